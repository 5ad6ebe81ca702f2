package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Provider is the service provider a booking is placed with.
type Provider struct {
	ID                uuid.UUID
	BusinessName      string
	PhoneNumber       string
	Email             string
	City              string
	IsActive          bool
	IsSuspended       bool
	Ratings           []RatingEntry
	AverageRating     float64
	TotalRatings      int64
	CompletedBookings int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsBookable reports whether the provider can accept new bookings.
func (p *Provider) IsBookable() bool {
	return p.IsActive && !p.IsSuspended
}

// AddRating appends a rating entry and recomputes the rolling average and total.
func (p *Provider) AddRating(entry RatingEntry) {
	p.Ratings = append(p.Ratings, entry)
	p.AverageRating = averageOf(p.Ratings)
	p.TotalRatings = int64(len(p.Ratings))
	p.UpdatedAt = time.Now().UTC()
}
