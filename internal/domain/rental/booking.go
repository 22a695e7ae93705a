package rental

import (
	"fmt"
	"strconv"

	"github.com/urbandrives/storefront/internal/platform/apperror"
)

// Booking is a snapshot of a reservation as the backend last reported it.
// The storefront never mutates one locally; state changes are requested
// from the backend and the snapshot is refetched.
type Booking struct {
	ID            int64         `json:"id"`
	Vehicle       *Vehicle      `json:"car,omitempty"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	CustomerPhone string        `json:"customerPhone,omitempty"`
	StartDate     Date          `json:"startDate"`
	EndDate       Date          `json:"endDate"`
	TotalAmount   Cents         `json:"totalAmount"`
	Status        BookingStatus `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     Timestamp     `json:"createdAt"`
	UpdatedAt     Timestamp     `json:"updatedAt"`
}

// Range returns the booked dates.
func (b *Booking) Range() DateRange {
	return DateRange{From: b.StartDate, To: b.EndDate}
}

// Days is the number of booked days, at least one.
func (b *Booking) Days() int {
	if d := b.Range().NumberOfDays(); d > 1 {
		return d
	}
	return 1
}

// CanCancel reports whether the customer may request cancellation.
func (b *Booking) CanCancel() bool {
	return b.Status.CanBeCancelled()
}

// EnsureCancellable returns an InvalidStateError unless CanCancel holds.
func (b *Booking) EnsureCancellable() error {
	if !b.CanCancel() {
		return apperror.NewInvalidStateError(b.Status.String(), StatusCancelled.String())
	}
	return nil
}

// BelongsTo reports whether the booking was made with email.
func (b *Booking) BelongsTo(email string) bool {
	return normalizeEmail(b.CustomerEmail) == normalizeEmail(email)
}

// IDString formats the id for messages and redirects.
func (b *Booking) IDString() string {
	return strconv.FormatInt(b.ID, 10)
}

// Validate checks a decoded backend record: a positive id and a known status.
func (b *Booking) Validate() error {
	if b.ID <= 0 {
		return fmt.Errorf("booking id must be positive")
	}
	if !b.Status.IsValid() {
		return fmt.Errorf("booking %d has invalid status %q", b.ID, b.Status)
	}
	return nil
}

// BookingFilter narrows a booking listing. An empty filter lists everything.
type BookingFilter struct {
	CustomerEmail string
}
