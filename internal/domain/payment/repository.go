package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/urbandrives/storefront/internal/domain/rental"
)

// Repository persists ledger entries. Save returns a ConflictError when the
// provider reference is already recorded.
type Repository interface {
	Save(ctx context.Context, p *Payment) error
	FindByBookingID(ctx context.Context, bookingID int64) ([]*Payment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Payment, int64, error)
}

// CheckoutRequest describes a hosted checkout for one booking.
type CheckoutRequest struct {
	BookingID     int64
	VehicleID     int64
	UserID        uuid.UUID
	CustomerEmail string
	Description   string
	Amount        rental.Cents
	Currency      string
}

// CheckoutSession is the provider's hosted checkout page.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutProvider opens hosted checkout sessions.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}
