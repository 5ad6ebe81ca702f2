package booking

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows admin booking listings.
type ListFilter struct {
	Status     BookingStatus
	ProviderID uuid.UUID
	ClientID   uuid.UUID
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-displayable number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByClientID retrieves a client's bookings, newest first,
	// optionally narrowed to one status.
	FindByClientID(ctx context.Context, clientID uuid.UUID, status BookingStatus) ([]*Booking, error)

	// FindByProviderID retrieves a provider's bookings ordered by
	// scheduled date and time, optionally narrowed to one status.
	FindByProviderID(ctx context.Context, providerID uuid.UUID, status BookingStatus) ([]*Booking, error)

	// ListAll retrieves bookings matching the filter with pagination (admin).
	ListAll(ctx context.Context, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking. The write is
	// conditional on the stored version so concurrent transitions cannot
	// overwrite each other's history entries; a lost race surfaces as a
	// conflict error.
	Update(ctx context.Context, booking *Booking) error
}
