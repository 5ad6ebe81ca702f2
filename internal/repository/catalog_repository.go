package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ServiGo-Platform/service-marketplace/internal/domain/catalog"
	"github.com/ServiGo-Platform/service-marketplace/pkg/domain"
)

// ServiceModel is the GORM model for the services table.
type ServiceModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Title             string          `gorm:"not null;size:200"`
	ProviderID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Pricing           json.RawMessage `gorm:"type:jsonb;not null"`
	Discount          json.RawMessage `gorm:"type:jsonb"`
	AdditionalOptions json.RawMessage `gorm:"type:jsonb"`
	IsAvailable       bool            `gorm:"not null;default:true;index"`
	BookingCount      int64           `gorm:"not null;default:0"`
	Ratings           json.RawMessage `gorm:"type:jsonb"`
	AverageRating     float64         `gorm:"not null;default:0"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ServiceModel) TableName() string {
	return "services"
}

// ProviderModel is the GORM model for the providers table.
type ProviderModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BusinessName      string          `gorm:"not null;size:200"`
	PhoneNumber       string          `gorm:"size:30"`
	Email             string          `gorm:"size:200"`
	City              string          `gorm:"size:100"`
	IsActive          bool            `gorm:"not null;default:true"`
	IsSuspended       bool            `gorm:"not null;default:false"`
	Ratings           json.RawMessage `gorm:"type:jsonb"`
	AverageRating     float64         `gorm:"not null;default:0"`
	TotalRatings      int64           `gorm:"not null;default:0"`
	CompletedBookings int64           `gorm:"not null;default:0"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProviderModel) TableName() string {
	return "providers"
}

// GormServiceRepository is the GORM-based implementation of ServiceRepository.
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository.
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID retrieves a service by its unique identifier.
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var model ServiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Service", id.String())
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}
	return toDomainService(&model)
}

// FindAvailableByIDs retrieves the available services among the given ids.
// Missing or unavailable services are simply absent from the result.
func (r *GormServiceRepository) FindAvailableByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Service, error) {
	var models []ServiceModel
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_available = ?", ids, true).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}

	services := make([]*catalog.Service, len(models))
	for i, m := range models {
		svc, err := toDomainService(&m)
		if err != nil {
			return nil, err
		}
		services[i] = svc
	}
	return services, nil
}

// IncrementBookingCount bumps the service's denormalized booking counter.
func (r *GormServiceRepository) IncrementBookingCount(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&ServiceModel{}).
		Where("id = ?", id).
		UpdateColumn("booking_count", gorm.Expr("booking_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment service booking count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Service", id.String())
	}
	return nil
}

// SaveRatings persists the service's ratings list and recomputed average.
func (r *GormServiceRepository) SaveRatings(ctx context.Context, svc *catalog.Service) error {
	ratingsJSON, err := json.Marshal(svc.Ratings)
	if err != nil {
		return fmt.Errorf("failed to marshal service ratings: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&ServiceModel{}).
		Where("id = ?", svc.ID).
		Updates(map[string]interface{}{
			"ratings":        ratingsJSON,
			"average_rating": svc.AverageRating,
			"updated_at":     svc.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save service ratings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Service", svc.ID.String())
	}
	return nil
}

// GormProviderRepository is the GORM-based implementation of ProviderRepository.
type GormProviderRepository struct {
	db *gorm.DB
}

// NewGormProviderRepository creates a new GormProviderRepository.
func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

// FindByID retrieves a provider by its unique identifier.
func (r *GormProviderRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Provider, error) {
	var model ProviderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Provider", id.String())
		}
		return nil, fmt.Errorf("failed to find provider by ID: %w", err)
	}
	return toDomainProvider(&model)
}

// IncrementCompletedBookings bumps the provider's completed-booking counter.
func (r *GormProviderRepository) IncrementCompletedBookings(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&ProviderModel{}).
		Where("id = ?", id).
		UpdateColumn("completed_bookings", gorm.Expr("completed_bookings + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment completed bookings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Provider", id.String())
	}
	return nil
}

// SaveRatings persists the provider's ratings list and recomputed aggregates.
func (r *GormProviderRepository) SaveRatings(ctx context.Context, p *catalog.Provider) error {
	ratingsJSON, err := json.Marshal(p.Ratings)
	if err != nil {
		return fmt.Errorf("failed to marshal provider ratings: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&ProviderModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"ratings":        ratingsJSON,
			"average_rating": p.AverageRating,
			"total_ratings":  p.TotalRatings,
			"updated_at":     p.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save provider ratings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Provider", p.ID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toDomainService(m *ServiceModel) (*catalog.Service, error) {
	var pricing catalog.ServicePricing
	if err := json.Unmarshal(m.Pricing, &pricing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service pricing: %w", err)
	}

	var discount catalog.Discount
	if len(m.Discount) > 0 {
		if err := json.Unmarshal(m.Discount, &discount); err != nil {
			return nil, fmt.Errorf("failed to unmarshal discount: %w", err)
		}
	}

	var options []catalog.AdditionalOption
	if len(m.AdditionalOptions) > 0 {
		if err := json.Unmarshal(m.AdditionalOptions, &options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal additional options: %w", err)
		}
	}

	var ratings []catalog.RatingEntry
	if len(m.Ratings) > 0 {
		if err := json.Unmarshal(m.Ratings, &ratings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal service ratings: %w", err)
		}
	}

	return &catalog.Service{
		ID:                m.ID,
		Title:             m.Title,
		ProviderID:        m.ProviderID,
		Pricing:           pricing,
		Discount:          discount,
		AdditionalOptions: options,
		IsAvailable:       m.IsAvailable,
		BookingCount:      m.BookingCount,
		Ratings:           ratings,
		AverageRating:     m.AverageRating,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func toDomainProvider(m *ProviderModel) (*catalog.Provider, error) {
	var ratings []catalog.RatingEntry
	if len(m.Ratings) > 0 {
		if err := json.Unmarshal(m.Ratings, &ratings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal provider ratings: %w", err)
		}
	}

	return &catalog.Provider{
		ID:                m.ID,
		BusinessName:      m.BusinessName,
		PhoneNumber:       m.PhoneNumber,
		Email:             m.Email,
		City:              m.City,
		IsActive:          m.IsActive,
		IsSuspended:       m.IsSuspended,
		Ratings:           ratings,
		AverageRating:     m.AverageRating,
		TotalRatings:      m.TotalRatings,
		CompletedBookings: m.CompletedBookings,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}
