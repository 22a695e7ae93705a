package rental

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusActive    BookingStatus = "ACTIVE"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// validTransitions is the backend's state machine. Only cancellation may be
// requested by a customer; the rest is driven by staff.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// CanBeCancelled is true exactly for PENDING and CONFIRMED.
func (s BookingStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// CountsAsRevenue is true for bookings that contribute to sales figures.
func (s BookingStatus) CountsAsRevenue() bool {
	return s == StatusConfirmed || s == StatusActive || s == StatusCompleted
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus normalizes s and returns an error if it is unknown.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// UnmarshalJSON rejects unknown statuses at the boundary.
func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("booking status must be a string: %w", err)
	}
	parsed, err := ParseBookingStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AllBookingStatuses lists every status in lifecycle order.
func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled}
}
