package booking

import (
	"fmt"
	"strings"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// AllStatuses lists every recognized status, in lifecycle order.
var AllStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// clientCancelBlocked lists the states a client may not cancel from.
// In-progress bookings require administrative cancellation.
var clientCancelBlocked = map[BookingStatus]bool{
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusInProgress: true,
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsAbsorbing returns true if no transition out of this status is ever
// permitted. Only completed is absorbing: cancelled and no_show are end
// states an administrator may still reopen.
func (s BookingStatus) IsAbsorbing() bool {
	return s == StatusCompleted
}

// CanBeCancelledByClient returns true if the owning client may cancel a
// booking in this status.
func (s BookingStatus) CanBeCancelledByClient() bool {
	return s.IsValid() && !clientCancelBlocked[s]
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// ValidStatusList returns the recognized statuses joined for error messages.
func ValidStatusList() string {
	names := make([]string, len(AllStatuses))
	for i, s := range AllStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
