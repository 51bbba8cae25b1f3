package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vietvisa/config"
	"vietvisa/internal/domain"
)

// IntentClient creates provider-hosted payment intents. The Stripe
// client.API's PaymentIntents service satisfies it.
type IntentClient interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type PaymentService struct {
	apps    ApplicationStore
	intents IntentClient
	cfg     config.StripeConfig
	events  EventPublisher
	log     *zap.Logger
}

func NewPaymentService(apps ApplicationStore, intents IntentClient, cfg config.StripeConfig, events EventPublisher, log *zap.Logger) *PaymentService {
	return &PaymentService{apps: apps, intents: intents, cfg: cfg, events: events, log: log}
}

type CreateIntentInput struct {
	ApplicationID      string   `json:"application_id" binding:"required"`
	Currency           string   `json:"currency"`             // "" or "usd" | "cny"
	PaymentMethodTypes []string `json:"payment_method_types"` // optional
}

type IntentResult struct {
	ClientSecret    string          `json:"client_secret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ReferenceNumber string          `json:"reference_number"`
}

// MinorUnits converts a decimal currency amount to the provider's integer
// minor-unit representation with round-half-up.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateIntent charges the amount recorded on the application at creation
// time; the provider never sees a recomputed figure.
func (s *PaymentService) CreateIntent(ctx context.Context, in CreateIntentInput) (*IntentResult, error) {
	app, err := s.apps.GetByID(in.ApplicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if app.PaymentStatus == domain.PaymentCompleted {
		return nil, ErrAlreadyPaid
	}

	currency := "usd"
	charge := app.AmountUSD
	if in.Currency == "cny" {
		currency = "cny"
		charge = app.AmountUSD.Mul(decimal.NewFromFloat(s.cfg.CNYExchangeRate)).Round(2)
	}

	entryLabel := "Single Entry"
	if app.EntryType == domain.EntryMultiple {
		entryLabel = "Multi-Entry"
	}
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(MinorUnits(charge)),
		Currency:     stripe.String(currency),
		ReceiptEmail: stripe.String(app.Email),
		Description:  stripe.String(fmt.Sprintf("Vietnam E-Visa Application (%s) - %s", entryLabel, app.ReferenceNumber)),
	}
	params.AddMetadata("applicationId", app.ID)
	params.AddMetadata("referenceNumber", app.ReferenceNumber)
	params.AddMetadata("email", app.Email)
	params.AddMetadata("entryType", app.EntryType)
	params.AddMetadata("visaSpeed", app.VisaSpeed)
	params.AddMetadata("originalAmountUSD", app.AmountUSD.String())
	if len(in.PaymentMethodTypes) > 0 {
		params.PaymentMethodTypes = stripe.StringSlice(in.PaymentMethodTypes)
		for _, pm := range in.PaymentMethodTypes {
			if pm == "wechat_pay" {
				params.PaymentMethodOptions = &stripe.PaymentIntentPaymentMethodOptionsParams{
					WeChatPay: &stripe.PaymentIntentPaymentMethodOptionsWeChatPayParams{
						Client: stripe.String("web"),
					},
				}
			}
		}
	}

	pi, err := s.intents.New(params)
	if err != nil {
		s.log.Error("payment intent create failed",
			zap.String("application_id", app.ID), zap.Error(err))
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if err := s.apps.SetPaymentIntentID(app.ID, pi.ID); err != nil {
		s.log.Error("failed to persist payment intent id",
			zap.String("application_id", app.ID), zap.String("intent_id", pi.ID), zap.Error(err))
		return nil, err
	}

	s.log.Info("payment intent created",
		zap.String("application_id", app.ID),
		zap.String("intent_id", pi.ID),
		zap.Int64("amount_minor", MinorUnits(charge)),
		zap.String("currency", currency))
	return &IntentResult{
		ClientSecret:    pi.ClientSecret,
		Amount:          charge,
		Currency:        currency,
		ReferenceNumber: app.ReferenceNumber,
	}, nil
}

// HandleEvent verifies the webhook signature before anything else touches
// the store, then applies the event.
func (s *PaymentService) HandleEvent(payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return s.ApplyEvent(event)
}

// ApplyEvent performs the store mutations for a verified provider event.
// It always acks (returns nil) for events this system cannot act on, so the
// provider stops redelivering them.
func (s *PaymentService) ApplyEvent(event stripe.Event) error {
	switch string(event.Type) {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			s.log.Error("webhook: malformed payment intent payload", zap.Error(err))
			return nil
		}
		appID := pi.Metadata["applicationId"]
		if appID == "" {
			s.log.Warn("webhook: succeeded event without applicationId metadata",
				zap.String("intent_id", pi.ID))
			return nil
		}
		method := "card"
		if len(pi.PaymentMethodTypes) > 0 {
			method = pi.PaymentMethodTypes[0]
		}
		applied, err := s.apps.MarkPaid(appID, method)
		if err != nil {
			s.log.Error("webhook: failed to mark application paid",
				zap.String("application_id", appID), zap.Error(err))
			return err
		}
		if !applied {
			// Either an unknown application id or an at-least-once replay of
			// an already-completed payment. Both are acked no-ops.
			s.log.Warn("webhook: succeeded event not applied",
				zap.String("application_id", appID), zap.String("intent_id", pi.ID))
			return nil
		}
		s.log.Info("payment succeeded",
			zap.String("application_id", appID), zap.String("intent_id", pi.ID))
		if s.events != nil {
			s.events.Publish("application.paid", appID, map[string]interface{}{
				"intent_id": pi.ID,
			})
		}
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			s.log.Error("webhook: malformed payment intent payload", zap.Error(err))
			return nil
		}
		appID := pi.Metadata["applicationId"]
		if appID == "" {
			return nil
		}
		if err := s.apps.MarkPaymentFailed(appID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("webhook: failed to mark payment failed",
				zap.String("application_id", appID), zap.Error(err))
			return err
		}
		s.log.Info("payment failed", zap.String("application_id", appID))
	default:
		s.log.Debug("webhook: unhandled event type", zap.String("type", string(event.Type)))
	}
	return nil
}
