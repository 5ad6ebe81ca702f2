package catalog

import (
	"time"

	"github.com/google/uuid"
)

// PriceType describes how a service's base price is quoted.
type PriceType string

const (
	PriceTypeFixed    PriceType = "fixed"
	PriceTypeHourly   PriceType = "hourly"
	PriceTypeEstimate PriceType = "estimate"
)

// ServicePricing holds the base price of a service.
type ServicePricing struct {
	BasePrice int64     `json:"base_price"`
	PriceType PriceType `json:"price_type"`
	Currency  string    `json:"currency"`
}

// Discount is an optional reduced price on a service.
type Discount struct {
	HasDiscount     bool       `json:"has_discount"`
	DiscountedPrice *int64     `json:"discounted_price,omitempty"`
	PercentDiscount int        `json:"percent_discount,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
}

// AdditionalOption is a paid add-on a client may select on a booking line.
type AdditionalOption struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description,omitempty"`
}

// Service is a bookable catalog entry owned by one provider.
type Service struct {
	ID                uuid.UUID
	Title             string
	ProviderID        uuid.UUID
	Pricing           ServicePricing
	Discount          Discount
	AdditionalOptions []AdditionalOption
	IsAvailable       bool
	BookingCount      int64
	Ratings           []RatingEntry
	AverageRating     float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UnitPrice returns the effective per-unit price: the discounted price when a
// discount is active and set, the base price otherwise.
func (s *Service) UnitPrice() int64 {
	if s.Discount.HasDiscount && s.Discount.DiscountedPrice != nil {
		return *s.Discount.DiscountedPrice
	}
	return s.Pricing.BasePrice
}

// OptionPrice looks up an additional option by name.
func (s *Service) OptionPrice(name string) (int64, bool) {
	for _, opt := range s.AdditionalOptions {
		if opt.Name == name {
			return opt.Price, true
		}
	}
	return 0, false
}

// AddRating appends a rating entry and recomputes the rolling average.
func (s *Service) AddRating(entry RatingEntry) {
	s.Ratings = append(s.Ratings, entry)
	s.AverageRating = averageOf(s.Ratings)
	s.UpdatedAt = time.Now().UTC()
}
