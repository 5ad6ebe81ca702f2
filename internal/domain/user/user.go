package user

import (
	"context"

	"github.com/google/uuid"
)

// User is the minimal account projection the booking core depends on:
// the contact snapshot source and the link to a provider profile.
type User struct {
	ID                uuid.UUID
	Name              string
	Phone             string
	Email             string
	Role              string
	ProviderProfileID *uuid.UUID
	BookingCount      int64
}

// Repository defines the user lookups and bookkeeping the core needs.
type Repository interface {
	// FindByID retrieves a user by id.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// IncrementBookingCount bumps the user's denormalized booking counter.
	IncrementBookingCount(ctx context.Context, id uuid.UUID) error
}
