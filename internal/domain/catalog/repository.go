package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository defines read and side-effect operations on catalog services.
type ServiceRepository interface {
	// FindByID retrieves a service by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)

	// FindAvailableByIDs retrieves the available services among the given ids.
	// Missing or unavailable ids are simply absent from the result.
	FindAvailableByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error)

	// IncrementBookingCount atomically bumps the denormalized booking counter.
	IncrementBookingCount(ctx context.Context, id uuid.UUID) error

	// SaveRatings persists the service's ratings and recomputed average.
	SaveRatings(ctx context.Context, svc *Service) error
}

// ProviderRepository defines read and side-effect operations on providers.
type ProviderRepository interface {
	// FindByID retrieves a provider by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Provider, error)

	// IncrementCompletedBookings atomically bumps the completed-bookings counter.
	IncrementCompletedBookings(ctx context.Context, id uuid.UUID) error

	// SaveRatings persists the provider's ratings, average and total.
	SaveRatings(ctx context.Context, p *Provider) error
}
