package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published on booking.events.
const (
	BookingCreated         = "booking.created"
	BookingStatusChanged   = "booking.status_changed"
	BookingCancelled       = "booking.cancelled"
	BookingRated           = "booking.rated"
	BookingContactRevealed = "booking.contact_revealed"
)

// Event types consumed from payment.events.
const (
	PaymentRecorded = "payment.recorded"
)

// BookingCreatedEvent is published when a client creates a booking.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	ClientID      uuid.UUID `json:"client_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	ServiceTotal  int64     `json:"service_total"`
	PlatformFee   int64     `json:"platform_fee"`
	TotalAmount   int64     `json:"total_amount"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published on every successful transition.
type BookingStatusChangedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	ProviderID    uuid.UUID `json:"provider_id"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	ChangedBy     uuid.UUID `json:"changed_by"`
	Note          string    `json:"note,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a client cancels a booking.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingRatedEvent is published when a client rates a completed booking.
type BookingRatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ClientID   uuid.UUID `json:"client_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ContactRevealedEvent is published when an admin grants contact disclosure.
type ContactRevealedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	RevealedBy uuid.UUID `json:"revealed_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentRecordedEvent is consumed from the payment service when a payment
// settles. The booking core records it and does nothing else with money.
type PaymentRecordedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	TransactionID string    `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}
