package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vietvisa/config"
	"vietvisa/internal/domain"
	"vietvisa/internal/models"
)

func paymentFixture() (*stubAppStore, *fakeIntents, *fakeEvents, *PaymentService) {
	store := &stubAppStore{app: &models.Application{
		ID:              "app-1",
		ReferenceNumber: "VN-ABCD1234",
		Email:           "traveler@example.com",
		EntryType:       domain.EntrySingle,
		VisaSpeed:       domain.SpeedStandard,
		AmountUSD:       decimal.RequireFromString("199.00"),
		PaymentStatus:   domain.PaymentPending,
		Status:          domain.StatusPendingPayment,
	}}
	intents := &fakeIntents{pi: &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}}
	events := &fakeEvents{}
	svc := NewPaymentService(store, intents, config.StripeConfig{
		WebhookSecret:   "whsec_test",
		CNYExchangeRate: 7.2,
	}, events, zap.NewNop())
	return store, intents, events, svc
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"199.00", 19900},
		{"149.99", 14999},
		{"0.01", 1},
		{"100", 10000},
		{"10.005", 1001}, // half rounds up
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinorUnits(decimal.RequireFromString(tt.amount)), tt.amount)
	}
}

func TestCreateIntent_ChargesStoredAmount(t *testing.T) {
	store, intents, _, svc := paymentFixture()

	result, err := svc.CreateIntent(context.Background(), CreateIntentInput{ApplicationID: "app-1"})
	require.NoError(t, err)

	assert.Equal(t, "pi_123_secret", result.ClientSecret)
	assert.Equal(t, "usd", result.Currency)
	assert.Equal(t, "VN-ABCD1234", result.ReferenceNumber)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("199.00")))

	require.NotNil(t, intents.params)
	assert.Equal(t, int64(19900), *intents.params.Amount)
	assert.Equal(t, "usd", *intents.params.Currency)
	assert.Equal(t, "app-1", intents.params.Metadata["applicationId"])
	assert.Equal(t, "VN-ABCD1234", intents.params.Metadata["referenceNumber"])
	assert.Equal(t, "pi_123", store.intentID)
}

func TestCreateIntent_CNYConversion(t *testing.T) {
	_, intents, _, svc := paymentFixture()

	result, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		ApplicationID:      "app-1",
		Currency:           "cny",
		PaymentMethodTypes: []string{"wechat_pay"},
	})
	require.NoError(t, err)

	// 199.00 * 7.2 = 1432.80
	assert.Equal(t, "cny", result.Currency)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("1432.80")), result.Amount.String())
	assert.Equal(t, int64(143280), *intents.params.Amount)
	require.NotNil(t, intents.params.PaymentMethodOptions)
	require.NotNil(t, intents.params.PaymentMethodOptions.WeChatPay)
	// The original USD figure rides along for reconciliation.
	assert.Equal(t, "199", intents.params.Metadata["originalAmountUSD"])
}

func TestCreateIntent_AlreadyPaid(t *testing.T) {
	store, intents, _, svc := paymentFixture()
	store.app.PaymentStatus = domain.PaymentCompleted

	_, err := svc.CreateIntent(context.Background(), CreateIntentInput{ApplicationID: "app-1"})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	// The guard fires before the provider is ever contacted.
	assert.Equal(t, 0, intents.calls)
}

func TestCreateIntent_UnknownApplication(t *testing.T) {
	_, _, _, svc := paymentFixture()
	_, err := svc.CreateIntent(context.Background(), CreateIntentInput{ApplicationID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func succeededEvent(t *testing.T, appID, intentID string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id":       intentID,
		"metadata": map[string]string{"applicationId": appID},
		"payment_method_types": []string{"card"},
	})
	require.NoError(t, err)
	return stripe.Event{
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestApplyEvent_Succeeded(t *testing.T) {
	store, _, events, svc := paymentFixture()

	err := svc.ApplyEvent(succeededEvent(t, "app-1", "pi_123"))
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentCompleted, store.app.PaymentStatus)
	assert.Equal(t, domain.StatusPaymentReceived, store.app.Status)
	assert.Equal(t, "card", store.app.PaymentMethod)
	assert.Equal(t, []string{"application.paid"}, events.types())
}

func TestApplyEvent_ReplayIsNoOp(t *testing.T) {
	store, _, events, svc := paymentFixture()

	require.NoError(t, svc.ApplyEvent(succeededEvent(t, "app-1", "pi_123")))
	require.NoError(t, svc.ApplyEvent(succeededEvent(t, "app-1", "pi_123")))

	assert.Equal(t, 2, store.markPaidCalls)
	assert.Equal(t, domain.PaymentCompleted, store.app.PaymentStatus)
	// Only the first delivery publishes.
	assert.Equal(t, []string{"application.paid"}, events.types())
}

func TestApplyEvent_UnknownApplicationAcked(t *testing.T) {
	store, _, events, svc := paymentFixture()

	// Unknown ids are acked so the provider stops redelivering.
	err := svc.ApplyEvent(succeededEvent(t, "no-such-app", "pi_999"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, store.app.PaymentStatus)
	assert.Empty(t, events.types())
}

func TestApplyEvent_PaymentFailed(t *testing.T) {
	store, _, _, svc := paymentFixture()

	raw, err := json.Marshal(map[string]interface{}{
		"id":       "pi_123",
		"metadata": map[string]string{"applicationId": "app-1"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.ApplyEvent(stripe.Event{
		Type: "payment_intent.payment_failed",
		Data: &stripe.EventData{Raw: raw},
	}))

	assert.Equal(t, domain.PaymentFailed, store.app.PaymentStatus)
	// The lifecycle status stays put; the customer can retry.
	assert.Equal(t, domain.StatusPendingPayment, store.app.Status)
}

func TestApplyEvent_UnhandledTypeAcked(t *testing.T) {
	_, _, _, svc := paymentFixture()
	assert.NoError(t, svc.ApplyEvent(stripe.Event{Type: "charge.refunded", Data: &stripe.EventData{Raw: []byte("{}")}}))
}

// signPayload builds a Stripe-Signature header over payload the way the
// provider does.
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestHandleEvent_ValidSignature(t *testing.T) {
	store, _, _, svc := paymentFixture()

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","metadata":{"applicationId":"app-1"},"payment_method_types":["card"]}}}`)
	header := signPayload(payload, "whsec_test", time.Now())

	require.NoError(t, svc.HandleEvent(payload, header))
	assert.Equal(t, domain.PaymentCompleted, store.app.PaymentStatus)
}

func TestHandleEvent_BadSignature(t *testing.T) {
	store, _, _, svc := paymentFixture()

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","metadata":{"applicationId":"app-1"}}}}`)
	err := svc.HandleEvent(payload, signPayload(payload, "whsec_wrong", time.Now()))

	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, 0, store.markPaidCalls)
}

func TestHandleEvent_TamperedPayload(t *testing.T) {
	store, _, _, svc := paymentFixture()

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","metadata":{"applicationId":"app-1"}}}}`)
	header := signPayload(payload, "whsec_test", time.Now())
	tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","metadata":{"applicationId":"app-2"}}}}`)

	err := svc.HandleEvent(tampered, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, 0, store.markPaidCalls)
}
