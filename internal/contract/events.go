// Package contract defines the Kafka topics and event payloads the storefront
// produces and consumes.
package contract

import "time"

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event source names.
const (
	SourceStorefront = "service-storefront"
	SourceCheckout   = "service-storefront-checkout"
)

// Booking event types.
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
)

// Payment event types.
const (
	PaymentSucceeded = "payment.succeeded"
)

// BookingCreatedEvent is published after the backend accepts a booking.
type BookingCreatedEvent struct {
	BookingID       int64     `json:"booking_id"`
	VehicleID       int64     `json:"vehicle_id"`
	CustomerEmail   string    `json:"customer_email"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	Days            int       `json:"days"`
	EstimatedAmount int64     `json:"estimated_amount_cents"`
	TotalAmount     int64     `json:"total_amount_cents"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published after a cancellation is confirmed by refetch.
type BookingCancelledEvent struct {
	BookingID      int64     `json:"booking_id"`
	CustomerEmail  string    `json:"customer_email"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	CancelledBy    string    `json:"cancelled_by,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PaymentSucceededEvent reports a completed checkout.
type PaymentSucceededEvent struct {
	ProviderRef   string    `json:"provider_ref"`
	UserID        string    `json:"user_id,omitempty"`
	BookingID     int64     `json:"booking_id"`
	VehicleID     int64     `json:"vehicle_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	PaidAt        time.Time `json:"paid_at"`
}
