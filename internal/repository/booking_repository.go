package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/ServiGo-Platform/service-marketplace/internal/domain/booking"
	"github.com/ServiGo-Platform/service-marketplace/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber         string          `gorm:"uniqueIndex;not null;size:20"`
	ClientID              uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProviderID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	ContactInfo           json.RawMessage `gorm:"type:jsonb;not null"`
	Services              json.RawMessage `gorm:"type:jsonb;not null"`
	ScheduledDate         time.Time       `gorm:"not null;index"`
	ScheduledTime         string          `gorm:"not null;size:10"`
	ServiceLocation       json.RawMessage `gorm:"type:jsonb;not null"`
	ClientNotes           string          `gorm:"size:1000"`
	Pricing               json.RawMessage `gorm:"type:jsonb;not null"`
	Status                string          `gorm:"not null;size:30;index"`
	StatusHistory         json.RawMessage `gorm:"type:jsonb;not null"`
	Payment               json.RawMessage `gorm:"type:jsonb;not null"`
	ProviderCanSeeContact bool            `gorm:"not null;default:false"`
	Rating                json.RawMessage `gorm:"type:jsonb"`
	Version               int64           `gorm:"not null;default:1"`
	CreatedAt             time.Time       `gorm:"not null"`
	UpdatedAt             time.Time       `gorm:"not null"`
	ConfirmedAt           *time.Time      `gorm:""`
	CompletedAt           *time.Time      `gorm:""`
	CancelledAt           *time.Time      `gorm:""`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByClientID retrieves a client's bookings, newest first.
func (r *GormBookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, status bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).Where("client_id = ?", clientID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var models []BookingModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find client bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByProviderID retrieves a provider's bookings ordered by scheduled slot.
func (r *GormBookingRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID, status bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).Where("provider_id = ?", providerID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var models []BookingModel
	if err := query.Order("scheduled_date ASC, scheduled_time ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find provider bookings: %w", err)
	}
	return toDomainBookings(models)
}

// ListAll retrieves bookings matching the filter with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.ProviderID != uuid.Nil {
		query = query.Where("provider_id = ?", filter.ProviderID)
	}
	if filter.ClientID != uuid.Nil {
		query = query.Where("client_id = ?", filter.ClientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"contact_info":             model.ContactInfo,
			"services":                 model.Services,
			"scheduled_date":           model.ScheduledDate,
			"scheduled_time":           model.ScheduledTime,
			"service_location":         model.ServiceLocation,
			"client_notes":             model.ClientNotes,
			"pricing":                  model.Pricing,
			"status":                   model.Status,
			"status_history":           model.StatusHistory,
			"payment":                  model.Payment,
			"provider_can_see_contact": model.ProviderCanSeeContact,
			"rating":                   model.Rating,
			"version":                  model.Version,
			"updated_at":               model.UpdatedAt,
			"confirmed_at":             model.ConfirmedAt,
			"completed_at":             model.CompletedAt,
			"cancelled_at":             model.CancelledAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	contactJSON, err := json.Marshal(bk.ContactInfo())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact info: %w", err)
	}

	servicesJSON, err := json.Marshal(bk.Lines())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal service lines: %w", err)
	}

	locationJSON, err := json.Marshal(bk.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal service location: %w", err)
	}

	pricingJSON, err := json.Marshal(bk.Pricing())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pricing: %w", err)
	}

	historyJSON, err := json.Marshal(bk.StatusHistory())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status history: %w", err)
	}

	paymentJSON, err := json.Marshal(bk.Payment())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment: %w", err)
	}

	ratingJSON, err := json.Marshal(bk.Rating())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rating: %w", err)
	}

	return &BookingModel{
		ID:                    bk.ID(),
		BookingNumber:         bk.BookingNumber(),
		ClientID:              bk.ClientID(),
		ProviderID:            bk.ProviderID(),
		ContactInfo:           contactJSON,
		Services:              servicesJSON,
		ScheduledDate:         bk.ScheduledDate(),
		ScheduledTime:         bk.ScheduledTime(),
		ServiceLocation:       locationJSON,
		ClientNotes:           bk.ClientNotes(),
		Pricing:               pricingJSON,
		Status:                string(bk.Status()),
		StatusHistory:         historyJSON,
		Payment:               paymentJSON,
		ProviderCanSeeContact: bk.ProviderCanSeeContact(),
		Rating:                ratingJSON,
		Version:               bk.Version(),
		CreatedAt:             bk.CreatedAt(),
		UpdatedAt:             bk.UpdatedAt(),
		ConfirmedAt:           bk.ConfirmedAt(),
		CompletedAt:           bk.CompletedAt(),
		CancelledAt:           bk.CancelledAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var contact bookingDomain.ContactInfo
	if err := json.Unmarshal(m.ContactInfo, &contact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact info: %w", err)
	}

	var lines []bookingDomain.ServiceLine
	if err := json.Unmarshal(m.Services, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service lines: %w", err)
	}

	var location bookingDomain.ServiceLocation
	if err := json.Unmarshal(m.ServiceLocation, &location); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service location: %w", err)
	}

	var pricing bookingDomain.Pricing
	if err := json.Unmarshal(m.Pricing, &pricing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pricing: %w", err)
	}

	var history []bookingDomain.StatusChange
	if err := json.Unmarshal(m.StatusHistory, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status history: %w", err)
	}

	var payment bookingDomain.PaymentRecord
	if err := json.Unmarshal(m.Payment, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}

	var rating bookingDomain.BookingRating
	if len(m.Rating) > 0 {
		if err := json.Unmarshal(m.Rating, &rating); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rating: %w", err)
		}
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.ClientID,
		contact,
		m.ProviderID,
		lines,
		m.ScheduledDate,
		m.ScheduledTime,
		location,
		m.ClientNotes,
		pricing,
		status,
		history,
		payment,
		m.ProviderCanSeeContact,
		rating,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
		m.ConfirmedAt,
		m.CompletedAt,
		m.CancelledAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
