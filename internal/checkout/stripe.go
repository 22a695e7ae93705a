// Package checkout integrates Stripe hosted checkout.
package checkout

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/domain/payment"
)

// Metadata keys attached to every checkout session.
const (
	MetaBookingID = "booking_id"
	MetaVehicleID = "vehicle_id"
	MetaUserID    = "user_id"
)

// StripeCheckout opens Stripe Checkout sessions.
type StripeCheckout struct {
	successURL string
	cancelURL  string
	logger     *zap.Logger
}

// NewStripeCheckout configures the Stripe client with secretKey.
func NewStripeCheckout(secretKey, successURL, cancelURL string, logger *zap.Logger) *StripeCheckout {
	stripe.Key = secretKey
	return &StripeCheckout{successURL: successURL, cancelURL: cancelURL, logger: logger}
}

// CreateCheckout opens a one-item payment session for the booking total.
func (s *StripeCheckout) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(int64(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(strconv.FormatInt(req.BookingID, 10)),
	}
	params.Context = ctx
	params.AddMetadata(MetaBookingID, strconv.FormatInt(req.BookingID, 10))
	params.AddMetadata(MetaVehicleID, strconv.FormatInt(req.VehicleID, 10))
	params.AddMetadata(MetaUserID, req.UserID.String())

	sess, err := session.New(params)
	if err != nil {
		s.logger.Error("stripe checkout session failed",
			zap.Int64("booking_id", req.BookingID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &payment.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
