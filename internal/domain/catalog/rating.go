package catalog

import (
	"time"

	"github.com/google/uuid"
)

// RatingEntry is one rating left on a provider or a service.
type RatingEntry struct {
	UserID    uuid.UUID  `json:"user_id"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// averageOf returns the arithmetic mean of all rating entries, 0 when empty.
func averageOf(entries []RatingEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum int
	for _, e := range entries {
		sum += e.Rating
	}
	return float64(sum) / float64(len(entries))
}
