// Package payment models the storefront's payment ledger.
package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/urbandrives/storefront/internal/domain/rental"
	"github.com/urbandrives/storefront/internal/platform/apperror"
)

// DefaultCurrency is charged when none is configured.
const DefaultCurrency = "usd"

// Payment is one settled charge for a booking. Entries are immutable.
type Payment struct {
	id            uuid.UUID
	userID        *uuid.UUID
	bookingID     int64
	vehicleID     int64
	amount        rental.Cents
	currency      string
	paymentMethod string
	providerRef   string
	paidAt        time.Time
	createdAt     time.Time
}

// NewPayment creates a ledger entry. providerRef identifies the charge at the
// payment provider and is unique across the ledger.
func NewPayment(userID *uuid.UUID, bookingID, vehicleID int64, amount rental.Cents, currency, paymentMethod, providerRef string, paidAt time.Time) (*Payment, error) {
	if bookingID <= 0 {
		return nil, apperror.NewValidationError("booking ID is required")
	}
	if amount <= 0 {
		return nil, apperror.NewValidationError("payment amount must be positive")
	}
	if strings.TrimSpace(providerRef) == "" {
		return nil, apperror.NewValidationError("provider reference is required")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if paymentMethod == "" {
		paymentMethod = "card"
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return &Payment{
		id:            uuid.New(),
		userID:        userID,
		bookingID:     bookingID,
		vehicleID:     vehicleID,
		amount:        amount,
		currency:      strings.ToLower(currency),
		paymentMethod: paymentMethod,
		providerRef:   providerRef,
		paidAt:        paidAt.UTC(),
		createdAt:     time.Now().UTC(),
	}, nil
}

// ReconstructPayment rebuilds a Payment from persistence.
func ReconstructPayment(id uuid.UUID, userID *uuid.UUID, bookingID, vehicleID int64, amount rental.Cents, currency, paymentMethod, providerRef string, paidAt, createdAt time.Time) *Payment {
	return &Payment{
		id:            id,
		userID:        userID,
		bookingID:     bookingID,
		vehicleID:     vehicleID,
		amount:        amount,
		currency:      currency,
		paymentMethod: paymentMethod,
		providerRef:   providerRef,
		paidAt:        paidAt,
		createdAt:     createdAt,
	}
}

func (p *Payment) ID() uuid.UUID         { return p.id }
func (p *Payment) UserID() *uuid.UUID    { return p.userID }
func (p *Payment) BookingID() int64      { return p.bookingID }
func (p *Payment) VehicleID() int64      { return p.vehicleID }
func (p *Payment) Amount() rental.Cents  { return p.amount }
func (p *Payment) Currency() string      { return p.currency }
func (p *Payment) PaymentMethod() string { return p.paymentMethod }
func (p *Payment) ProviderRef() string   { return p.providerRef }
func (p *Payment) PaidAt() time.Time     { return p.paidAt }
func (p *Payment) CreatedAt() time.Time  { return p.createdAt }
