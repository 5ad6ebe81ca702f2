package booking

import (
	"time"

	"github.com/google/uuid"
)

// ContactInfo is the client contact snapshot taken at booking creation.
// It is intentionally decoupled from the live user record so historical
// bookings stay stable when the client edits their profile.
type ContactInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

const maskedValue = "***********"

// Masked returns the redacted projection served to providers who have not
// been granted contact access: a placeholder name derived from the last four
// characters of the booking number and fully masked phone/email.
func (c ContactInfo) Masked(bookingNumber string) ContactInfo {
	suffix := bookingNumber
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return ContactInfo{
		Name:  "Client #" + suffix,
		Phone: maskedValue,
		Email: maskedValue,
	}
}

// SelectedOption is a paid add-on chosen on a booking line, with the price
// resolved from the catalog at creation time.
type SelectedOption struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// ServiceLine is one service entry within a booking. Price is the line's
// total contribution (quantity and options included), not a unit price.
type ServiceLine struct {
	ServiceID       uuid.UUID        `json:"service_id"`
	Quantity        int              `json:"quantity"`
	Price           int64            `json:"price"`
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`
}

// LocationType tags where the service is performed.
type LocationType string

const (
	LocationClientAddress    LocationType = "client_address"
	LocationProviderLocation LocationType = "provider_location"
	LocationToBeDetermined   LocationType = "to_be_determined"
)

// IsValid returns true if the location type is recognized.
func (t LocationType) IsValid() bool {
	switch t {
	case LocationClientAddress, LocationProviderLocation, LocationToBeDetermined:
		return true
	}
	return false
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ServiceLocation describes where the service is performed.
type ServiceLocation struct {
	Type         LocationType `json:"type"`
	Address      string       `json:"address,omitempty"`
	City         string       `json:"city,omitempty"`
	District     string       `json:"district,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
}

// PaymentMethod is how the client intends to pay.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid returns true if the payment method is recognized.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentMobileMoney, PaymentCard, PaymentBankTransfer:
		return true
	}
	return false
}

// PaymentStatus tracks the recorded (not processed) payment state.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentRecord is the booking's payment bookkeeping.
type PaymentRecord struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
}

// RatingSlot is a single rating left on the booking, settable at most once.
type RatingSlot struct {
	Rating  int       `json:"rating"`
	Comment string    `json:"comment,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

// BookingRating holds the mutual client/provider ratings.
type BookingRating struct {
	ClientRating   *RatingSlot `json:"client_rating,omitempty"`
	ProviderRating *RatingSlot `json:"provider_rating,omitempty"`
}

// StatusChange is one append-only entry in the booking's status history.
type StatusChange struct {
	Status    BookingStatus `json:"status"`
	ChangedBy uuid.UUID     `json:"changed_by"`
	ChangedAt time.Time     `json:"changed_at"`
	Note      string        `json:"note,omitempty"`
}
