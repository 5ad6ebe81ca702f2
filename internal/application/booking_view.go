package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/ServiGo-Platform/service-marketplace/internal/domain/booking"
)

// BookingDTO is the read model served over HTTP. Client is a pointer so the
// provider-facing projection can omit it entirely.
type BookingDTO struct {
	ID            uuid.UUID               `json:"id"`
	BookingNumber string                  `json:"booking_number"`
	Client        *uuid.UUID              `json:"client,omitempty"`
	ContactInfo   booking.ContactInfo     `json:"contact_info"`
	Provider      uuid.UUID               `json:"provider"`
	Services      []booking.ServiceLine   `json:"services"`
	ScheduledDate time.Time               `json:"scheduled_date"`
	ScheduledTime string                  `json:"scheduled_time"`
	Location      booking.ServiceLocation `json:"service_location"`
	ClientNotes   string                  `json:"client_notes,omitempty"`
	Pricing       booking.Pricing         `json:"pricing"`
	Status        booking.BookingStatus   `json:"status"`
	StatusHistory []booking.StatusChange  `json:"status_history"`
	Payment       booking.PaymentRecord   `json:"payment"`
	CanSeeContact bool                    `json:"provider_can_see_contact"`
	Rating        booking.BookingRating   `json:"rating"`
	Version       int64                   `json:"version"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	ConfirmedAt   *time.Time              `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time              `json:"completed_at,omitempty"`
	CancelledAt   *time.Time              `json:"cancelled_at,omitempty"`
}

func toBookingDTO(bk *booking.Booking) BookingDTO {
	clientID := bk.ClientID()
	return BookingDTO{
		ID:            bk.ID(),
		BookingNumber: bk.BookingNumber(),
		Client:        &clientID,
		ContactInfo:   bk.ContactInfo(),
		Provider:      bk.ProviderID(),
		Services:      bk.Lines(),
		ScheduledDate: bk.ScheduledDate(),
		ScheduledTime: bk.ScheduledTime(),
		Location:      bk.Location(),
		ClientNotes:   bk.ClientNotes(),
		Pricing:       bk.Pricing(),
		Status:        bk.Status(),
		StatusHistory: bk.StatusHistory(),
		Payment:       bk.Payment(),
		CanSeeContact: bk.ProviderCanSeeContact(),
		Rating:        bk.Rating(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
		ConfirmedAt:   bk.ConfirmedAt(),
		CompletedAt:   bk.CompletedAt(),
		CancelledAt:   bk.CancelledAt(),
	}
}

func toBookingDTOs(list []*booking.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(list))
	for i, bk := range list {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

// redactContact strips the client reference and replaces the contact snapshot
// with the masked projection. Applied whenever a provider reads a booking
// without a disclosure grant, regardless of status.
func redactContact(dto *BookingDTO, bookingNumber string) {
	dto.Client = nil
	dto.ContactInfo = dto.ContactInfo.Masked(bookingNumber)
}
