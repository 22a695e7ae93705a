package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testSecret = "whsec_test"

func signed(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return sp.Header, sp.Payload
}

const completedEvent = `{
	"id": "evt_1",
	"object": "event",
	"type": "checkout.session.completed",
	"created": 1707998400,
	"data": {"object": {
		"id": "cs_test_1",
		"object": "checkout.session",
		"payment_status": "paid",
		"amount_total": 10000,
		"currency": "usd",
		"payment_intent": "pi_123",
		"metadata": {"booking_id": "99", "vehicle_id": "1", "user_id": "8d6f1c8e-2d4b-4a4e-9a5e-1f0b2c3d4e5f"}
	}}
}`

func TestParseWebhook_CompletedCheckout(t *testing.T) {
	header, payload := signed(t, completedEvent)

	evt, err := ParseWebhook(payload, header, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", evt.ProviderRef)
	assert.Equal(t, int64(99), evt.BookingID)
	assert.Equal(t, int64(1), evt.VehicleID)
	assert.Equal(t, int64(10000), evt.AmountCents)
	assert.Equal(t, "usd", evt.Currency)
	assert.Equal(t, "8d6f1c8e-2d4b-4a4e-9a5e-1f0b2c3d4e5f", evt.UserID)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	_, payload := signed(t, completedEvent)

	_, err := ParseWebhook(payload, "t=1,v1=deadbeef", testSecret)
	assert.Error(t, err)
}

func TestParseWebhook_OtherEventsIgnored(t *testing.T) {
	header, payload := signed(t, `{"id":"evt_2","object":"event","type":"customer.created","data":{"object":{}}}`)

	_, err := ParseWebhook(payload, header, testSecret)
	assert.ErrorIs(t, err, ErrIgnoredEvent)
}
