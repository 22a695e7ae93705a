package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/urbandrives/storefront/internal/contract"
)

// ErrIgnoredEvent is returned for verified events that carry no payment.
var ErrIgnoredEvent = errors.New("event does not describe a completed payment")

// ParseWebhook verifies a Stripe webhook and, for completed checkouts,
// converts it into a PaymentSucceededEvent.
func ParseWebhook(payload []byte, signature, secret string) (*contract.PaymentSucceededEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	if event.Type != "checkout.session.completed" {
		return nil, ErrIgnoredEvent
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}
	return paymentFromSession(&sess, time.Unix(event.Created, 0))
}

func paymentFromSession(sess *stripe.CheckoutSession, paidAt time.Time) (*contract.PaymentSucceededEvent, error) {
	if sess.ID == "" {
		return nil, fmt.Errorf("checkout session has no id")
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, ErrIgnoredEvent
	}

	bookingID, err := strconv.ParseInt(sess.Metadata[MetaBookingID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("checkout session %s has no booking id: %w", sess.ID, err)
	}
	vehicleID, _ := strconv.ParseInt(sess.Metadata[MetaVehicleID], 10, 64)

	ref := sess.ID
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		ref = sess.PaymentIntent.ID
	}

	return &contract.PaymentSucceededEvent{
		ProviderRef:   ref,
		UserID:        sess.Metadata[MetaUserID],
		BookingID:     bookingID,
		VehicleID:     vehicleID,
		AmountCents:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		PaymentMethod: "card",
		PaidAt:        paidAt.UTC(),
	}, nil
}
