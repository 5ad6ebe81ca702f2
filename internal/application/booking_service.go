package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ServiGo-Platform/service-marketplace/internal/domain/booking"
	"github.com/ServiGo-Platform/service-marketplace/internal/domain/catalog"
	"github.com/ServiGo-Platform/service-marketplace/internal/domain/user"
	"github.com/ServiGo-Platform/service-marketplace/internal/events"
	"github.com/ServiGo-Platform/service-marketplace/pkg/auth"
	"github.com/ServiGo-Platform/service-marketplace/pkg/domain"
	"github.com/ServiGo-Platform/service-marketplace/pkg/kafka"
)

// EventPublisher publishes CloudEvents; satisfied by *kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	Services        []booking.LineRequest   `json:"services"`
	ScheduledDate   time.Time               `json:"scheduled_date"`
	ScheduledTime   string                  `json:"scheduled_time"`
	ServiceLocation booking.ServiceLocation `json:"service_location"`
	ClientNotes     string                  `json:"client_notes"`
	PaymentMethod   booking.PaymentMethod   `json:"payment_method"`
}

// Viewer identifies who is reading a booking, for permission checks and
// contact redaction.
type Viewer struct {
	UserID uuid.UUID
	Role   auth.Role
}

// AdminListFilter narrows the admin booking listing.
type AdminListFilter struct {
	Status     string
	ProviderID uuid.UUID
	ClientID   uuid.UUID
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings  booking.BookingRepository
	services  catalog.ServiceRepository
	providers catalog.ProviderRepository
	users     user.Repository
	producer  EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings booking.BookingRepository,
	services catalog.ServiceRepository,
	providers catalog.ProviderRepository,
	users user.Repository,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		services:  services,
		providers: providers,
		users:     users,
		producer:  producer,
		logger:    logger,
	}
}

// CreateBooking creates a new booking for the given client. Preconditions
// are checked in order so each failure is distinct; the booking-count bumps
// on the client and services are best-effort bookkeeping that never roll
// back a created booking.
func (s *BookingService) CreateBooking(ctx context.Context, clientID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if len(req.Services) == 0 {
		return nil, domain.NewValidationError("please select at least one service")
	}
	if req.ScheduledDate.IsZero() || req.ScheduledTime == "" {
		return nil, domain.NewValidationError("please provide an appointment date and time")
	}
	if !req.ServiceLocation.Type.IsValid() {
		return nil, domain.NewValidationError("please specify the service location")
	}

	ids := make([]uuid.UUID, len(req.Services))
	for i, line := range req.Services {
		ids[i] = line.ServiceID
	}
	catalogServices, err := s.services.FindAvailableByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}

	quote, err := booking.ComputeQuote(req.Services, catalogServices)
	if err != nil {
		return nil, err
	}

	provider, err := s.providers.FindByID(ctx, quote.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.IsBookable() {
		return nil, domain.NewConflictError("this provider is not currently available")
	}

	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	contact := booking.ContactInfo{
		Name:  client.Name,
		Phone: client.Phone,
		Email: client.Email,
	}

	bk, err := booking.NewBooking(
		clientID,
		contact,
		quote,
		req.ScheduledDate,
		req.ScheduledTime,
		req.ServiceLocation,
		req.ClientNotes,
		req.PaymentMethod,
	)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	// Non-critical denormalized counters: log and continue on failure.
	if err := s.users.IncrementBookingCount(ctx, clientID); err != nil {
		s.logger.Warn("failed to link booking to client history",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}
	for _, id := range ids {
		if err := s.services.IncrementBookingCount(ctx, id); err != nil {
			s.logger.Warn("failed to increment service booking count",
				zap.String("service_id", id.String()),
				zap.Error(err),
			)
		}
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		ClientID:      clientID,
		ProviderID:    bk.ProviderID(),
		ServiceTotal:  bk.Pricing().ServiceTotal,
		PlatformFee:   bk.Pricing().PlatformFee,
		TotalAmount:   bk.Pricing().TotalAmount,
		Currency:      bk.Pricing().Currency,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateStatus applies an administrative status transition.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID, adminID uuid.UUID, newStatus, note string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	oldStatus := bk.Status()
	target := booking.BookingStatus(newStatus)
	if err := bk.ApplyStatus(target, adminID, note); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	// The guarded update committed, so this fires exactly once per booking.
	if target == booking.StatusCompleted {
		if err := s.providers.IncrementCompletedBookings(ctx, bk.ProviderID()); err != nil {
			s.logger.Warn("failed to increment provider completed bookings",
				zap.String("provider_id", bk.ProviderID().String()),
				zap.Error(err),
			)
		}
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingStatusChanged, events.BookingStatusChangedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		ProviderID:    bk.ProviderID(),
		OldStatus:     string(oldStatus),
		NewStatus:     string(target),
		ChangedBy:     adminID,
		Note:          note,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a booking on behalf of its owning client.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, clientID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.CancelByClient(clientID, reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CancelledBy:   clientID,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// RateBooking records the client's rating on a completed booking, then
// propagates it to the provider and each booked service. The booking write
// is the idempotency guard: once it commits, a duplicate call is rejected
// even if the propagation below partially failed on an earlier attempt.
func (s *BookingService) RateBooking(ctx context.Context, bookingID, clientID uuid.UUID, rating int, comment string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Rate(clientID, rating, comment); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	bkID := bk.ID()

	provider, err := s.providers.FindByID(ctx, bk.ProviderID())
	if err != nil {
		s.logger.Error("failed to load provider for rating propagation",
			zap.String("provider_id", bk.ProviderID().String()),
			zap.Error(err),
		)
	} else {
		provider.AddRating(catalog.RatingEntry{
			UserID:    clientID,
			BookingID: &bkID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: now,
		})
		if err := s.providers.SaveRatings(ctx, provider); err != nil {
			s.logger.Error("failed to save provider ratings",
				zap.String("provider_id", provider.ID.String()),
				zap.Error(err),
			)
		}
	}

	for _, line := range bk.Lines() {
		svc, err := s.services.FindByID(ctx, line.ServiceID)
		if err != nil {
			s.logger.Error("failed to load service for rating propagation",
				zap.String("service_id", line.ServiceID.String()),
				zap.Error(err),
			)
			continue
		}
		svc.AddRating(catalog.RatingEntry{
			UserID:    clientID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: now,
		})
		if err := s.services.SaveRatings(ctx, svc); err != nil {
			s.logger.Error("failed to save service ratings",
				zap.String("service_id", svc.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRated, events.BookingRatedEvent{
		BookingID:  bk.ID(),
		ClientID:   clientID,
		ProviderID: bk.ProviderID(),
		Rating:     rating,
		OccurredAt: now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// RevealContact grants the provider access to the client's real contact
// details for one booking. Admin-only; there is no reverse operation.
func (s *BookingService) RevealContact(ctx context.Context, bookingID, adminID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	bk.RevealContact()
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingContactRevealed, events.ContactRevealedEvent{
		BookingID:  bk.ID(),
		RevealedBy: adminID,
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// RecordPayment marks the booking's payment as settled with the given
// transaction id. Driven by the payment-events consumer.
func (s *BookingService) RecordPayment(ctx context.Context, bookingID uuid.UUID, transactionID string) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := bk.MarkPaid(transactionID); err != nil {
		return err
	}

	bk.IncrementVersion()
	return s.bookings.Update(ctx, bk)
}

// GetBooking retrieves one booking, applying the viewer's permission check
// and contact redaction.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID, viewer Viewer) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.projectForViewer(ctx, bk, viewer)
}

// GetBookingByNumber retrieves one booking by its human-displayable number,
// with the same permission check and redaction as GetBooking.
func (s *BookingService) GetBookingByNumber(ctx context.Context, number string, viewer Viewer) (*BookingDTO, error) {
	bk, err := s.bookings.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.projectForViewer(ctx, bk, viewer)
}

func (s *BookingService) projectForViewer(ctx context.Context, bk *booking.Booking, viewer Viewer) (*BookingDTO, error) {
	isClient := bk.ClientID() == viewer.UserID
	isAdmin := viewer.Role == auth.RoleAdmin

	isProvider := false
	if !isClient && !isAdmin && viewer.Role == auth.RoleProvider {
		u, err := s.users.FindByID(ctx, viewer.UserID)
		if err == nil && u.ProviderProfileID != nil && *u.ProviderProfileID == bk.ProviderID() {
			isProvider = true
		}
	}

	if !isClient && !isAdmin && !isProvider {
		return nil, domain.NewForbiddenError("not authorized to view this booking")
	}

	dto := toBookingDTO(bk)
	if isProvider && !bk.ProviderCanSeeContact() {
		redactContact(&dto, bk.BookingNumber())
	}
	return &dto, nil
}

// GetMyBookings retrieves the client's bookings, newest first.
func (s *BookingService) GetMyBookings(ctx context.Context, clientID uuid.UUID, status string) ([]BookingDTO, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	list, err := s.bookings.FindByClientID(ctx, clientID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list client bookings: %w", err)
	}
	return toBookingDTOs(list), nil
}

// GetProviderBookings retrieves the bookings placed with the caller's
// provider profile, ordered by scheduled slot, with contact info redacted
// wherever disclosure has not been granted.
func (s *BookingService) GetProviderBookings(ctx context.Context, userID uuid.UUID, status string) ([]BookingDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ProviderProfileID == nil {
		return nil, domain.NewForbiddenError("you must be a provider to access this resource")
	}

	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	list, err := s.bookings.FindByProviderID(ctx, *u.ProviderProfileID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(list))
	for i, bk := range list {
		dtos[i] = toBookingDTO(bk)
		if !bk.ProviderCanSeeContact() {
			redactContact(&dtos[i], bk.BookingNumber())
		}
	}
	return dtos, nil
}

// GetBookingStats returns booking counts per status (admin dashboard).
func (s *BookingService) GetBookingStats(ctx context.Context) (map[string]int64, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute booking stats: %w", err)
	}

	// Report zero for statuses with no bookings so the dashboard always
	// sees the full set.
	for _, status := range booking.AllStatuses {
		if _, ok := counts[string(status)]; !ok {
			counts[string(status)] = 0
		}
	}
	return counts, nil
}

// ListAllBookings returns a filtered, paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, filter AdminListFilter, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	statusFilter, err := parseStatusFilter(filter.Status)
	if err != nil {
		return nil, err
	}

	list, total, err := s.bookings.ListAll(ctx, booking.ListFilter{
		Status:     statusFilter,
		ProviderID: filter.ProviderID,
		ClientID:   filter.ClientID,
	}, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	result := domain.NewPaginatedResult(toBookingDTOs(list), total, page, limit)
	return &result, nil
}

// --- Helpers ---

func parseStatusFilter(status string) (booking.BookingStatus, error) {
	if status == "" {
		return "", nil
	}
	parsed := booking.BookingStatus(status)
	if !parsed.IsValid() {
		return "", domain.NewValidationError(
			fmt.Sprintf("invalid status %q, choose one of: %s", status, booking.ValidStatusList()))
	}
	return parsed, nil
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent("service-marketplace", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
