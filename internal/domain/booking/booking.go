package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/ServiGo-Platform/service-marketplace/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. Every status
// mutation goes through its methods so the history append and timestamp
// side effects cannot be skipped.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	clientID      uuid.UUID
	contactInfo   ContactInfo
	providerID    uuid.UUID
	lines         []ServiceLine
	scheduledDate time.Time
	scheduledTime string
	location      ServiceLocation
	clientNotes   string
	pricing       Pricing
	status        BookingStatus
	statusHistory []StatusChange
	payment       PaymentRecord
	canSeeContact bool
	rating        BookingRating

	version     int64
	createdAt   time.Time
	updatedAt   time.Time
	confirmedAt *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate in pending status with the
// initial history entry attributed to the client.
func NewBooking(
	clientID uuid.UUID,
	contactInfo ContactInfo,
	quote Quote,
	scheduledDate time.Time,
	scheduledTime string,
	location ServiceLocation,
	clientNotes string,
	paymentMethod PaymentMethod,
) (*Booking, error) {
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client ID is required")
	}
	if len(quote.Lines) == 0 {
		return nil, domain.NewValidationError("please select at least one service")
	}
	if scheduledDate.IsZero() || scheduledTime == "" {
		return nil, domain.NewValidationError("please provide an appointment date and time")
	}
	if !location.Type.IsValid() {
		return nil, domain.NewValidationError("please specify a valid service location")
	}
	if !paymentMethod.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", paymentMethod))
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		clientID:      clientID,
		contactInfo:   contactInfo,
		providerID:    quote.ProviderID,
		lines:         quote.Lines,
		scheduledDate: scheduledDate,
		scheduledTime: scheduledTime,
		location:      location,
		clientNotes:   clientNotes,
		pricing:       quote.Pricing,
		status:        StatusPending,
		statusHistory: []StatusChange{{
			Status:    StatusPending,
			ChangedBy: clientID,
			ChangedAt: now,
			Note:      "",
		}},
		payment: PaymentRecord{
			Method: paymentMethod,
			Status: PaymentPending,
		},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	clientID uuid.UUID,
	contactInfo ContactInfo,
	providerID uuid.UUID,
	lines []ServiceLine,
	scheduledDate time.Time,
	scheduledTime string,
	location ServiceLocation,
	clientNotes string,
	pricing Pricing,
	status BookingStatus,
	statusHistory []StatusChange,
	payment PaymentRecord,
	canSeeContact bool,
	rating BookingRating,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
	confirmedAt *time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
) *Booking {
	return &Booking{
		id:            id,
		bookingNumber: bookingNumber,
		clientID:      clientID,
		contactInfo:   contactInfo,
		providerID:    providerID,
		lines:         lines,
		scheduledDate: scheduledDate,
		scheduledTime: scheduledTime,
		location:      location,
		clientNotes:   clientNotes,
		pricing:       pricing,
		status:        status,
		statusHistory: statusHistory,
		payment:       payment,
		canSeeContact: canSeeContact,
		rating:        rating,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		confirmedAt:   confirmedAt,
		completedAt:   completedAt,
		cancelledAt:   cancelledAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-displayable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// ClientID returns the requesting client's user ID.
func (b *Booking) ClientID() uuid.UUID { return b.clientID }

// ContactInfo returns the contact snapshot taken at creation.
func (b *Booking) ContactInfo() ContactInfo { return b.contactInfo }

// ProviderID returns the provider all line items belong to.
func (b *Booking) ProviderID() uuid.UUID { return b.providerID }

// Lines returns the ordered service line items.
func (b *Booking) Lines() []ServiceLine { return b.lines }

// ScheduledDate returns the requested appointment date.
func (b *Booking) ScheduledDate() time.Time { return b.scheduledDate }

// ScheduledTime returns the requested appointment time, e.g. "14:30".
func (b *Booking) ScheduledTime() string { return b.scheduledTime }

// Location returns where the service is performed.
func (b *Booking) Location() ServiceLocation { return b.location }

// ClientNotes returns the client's free-form notes.
func (b *Booking) ClientNotes() string { return b.clientNotes }

// Pricing returns the monetary breakdown.
func (b *Booking) Pricing() Pricing { return b.pricing }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// StatusHistory returns the append-only status history.
func (b *Booking) StatusHistory() []StatusChange { return b.statusHistory }

// Payment returns the payment bookkeeping record.
func (b *Booking) Payment() PaymentRecord { return b.payment }

// ProviderCanSeeContact reports whether contact disclosure has been granted.
func (b *Booking) ProviderCanSeeContact() bool { return b.canSeeContact }

// Rating returns the mutual rating slots.
func (b *Booking) Rating() BookingRating { return b.rating }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// ConfirmedAt returns the time the booking was confirmed, if ever.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// CompletedAt returns the time the booking was completed, if ever.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns the time the booking was cancelled, if ever.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// --- Behavior ---

// ApplyStatus transitions the booking to newStatus, appending exactly one
// history entry. Completed is absorbing: any transition attempt out of it,
// including completed to completed, is rejected.
func (b *Booking) ApplyStatus(newStatus BookingStatus, actorID uuid.UUID, note string) error {
	if !newStatus.IsValid() {
		return domain.NewValidationError(
			fmt.Sprintf("invalid status %q, choose one of: %s", newStatus, ValidStatusList()))
	}
	if b.status.IsAbsorbing() {
		return domain.NewConflictError("cannot modify a completed booking")
	}

	b.appendStatus(newStatus, actorID, note)
	return nil
}

// CancelByClient cancels the booking on behalf of its owning client.
func (b *Booking) CancelByClient(clientID uuid.UUID, reason string) error {
	if b.clientID != clientID {
		return domain.NewForbiddenError("not authorized to cancel this booking")
	}
	if b.status == StatusInProgress {
		return domain.NewConflictError("an in-progress booking can only be cancelled by an administrator")
	}
	if !b.status.CanBeCancelledByClient() {
		return domain.NewConflictError("this booking can no longer be cancelled")
	}

	note := "Cancelled by client."
	if reason != "" {
		note = fmt.Sprintf("Cancelled by client. Reason: %s", reason)
	}
	b.appendStatus(StatusCancelled, clientID, note)
	return nil
}

// Rate records the client's rating. Settable at most once, only by the
// owning client, only once the booking is completed.
func (b *Booking) Rate(clientID uuid.UUID, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return domain.NewValidationError("rating must be between 1 and 5")
	}
	if b.clientID != clientID {
		return domain.NewForbiddenError("not authorized to rate this booking")
	}
	if b.status != StatusCompleted {
		return domain.NewConflictError("only a completed booking can be rated")
	}
	if b.rating.ClientRating != nil {
		return domain.NewConflictError("you have already rated this booking")
	}

	now := time.Now().UTC()
	b.rating.ClientRating = &RatingSlot{
		Rating:  rating,
		Comment: comment,
		RatedAt: now,
	}
	b.updatedAt = now
	return nil
}

// RevealContact grants the provider permanent access to the client's real
// contact details. There is no reverse operation.
func (b *Booking) RevealContact() {
	b.canSeeContact = true
	b.updatedAt = time.Now().UTC()
}

// MarkPaid records a completed payment against the booking.
func (b *Booking) MarkPaid(transactionID string) error {
	if b.payment.Status == PaymentPaid {
		return domain.NewConflictError("payment has already been recorded for this booking")
	}
	now := time.Now().UTC()
	b.payment.Status = PaymentPaid
	b.payment.PaidAt = &now
	b.payment.TransactionID = transactionID
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// appendStatus records the transition and sets the entry timestamps.
func (b *Booking) appendStatus(newStatus BookingStatus, actorID uuid.UUID, note string) {
	now := time.Now().UTC()
	b.statusHistory = append(b.statusHistory, StatusChange{
		Status:    newStatus,
		ChangedBy: actorID,
		ChangedAt: now,
		Note:      note,
	})
	b.status = newStatus
	b.updatedAt = now

	switch newStatus {
	case StatusConfirmed:
		b.confirmedAt = &now
	case StatusCompleted:
		b.completedAt = &now
	case StatusCancelled:
		b.cancelledAt = &now
	}
}
