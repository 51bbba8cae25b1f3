package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	verify "github.com/twilio/twilio-go/rest/verify/v2"

	"vietvisa/config"
)

// Sender delivers WhatsApp messages, optionally with a media attachment.
type Sender interface {
	SendMessage(ctx context.Context, toNumber, body string, mediaURL string) error
}

// Verifier wraps the phone verification service.
type Verifier interface {
	SendCode(ctx context.Context, phone, channel string) (string, error)
	CheckCode(ctx context.Context, phone, code string) (string, error)
}

type TwilioClient struct {
	api              *twilio.RestClient
	whatsAppFrom     string
	verifyServiceSID string
}

func NewTwilioClient(cfg *config.TwilioConfig) *TwilioClient {
	return &TwilioClient{
		api: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		whatsAppFrom:     cfg.WhatsAppNumber,
		verifyServiceSID: cfg.VerifyServiceSID,
	}
}

// SendMessage sends a WhatsApp message. toNumber is normalized to
// international format; mediaURL may be empty for text-only messages.
func (t *TwilioClient) SendMessage(ctx context.Context, toNumber, body string, mediaURL string) error {
	if !strings.HasPrefix(toNumber, "+") {
		toNumber = "+" + toNumber
	}
	params := &openapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + t.whatsAppFrom)
	params.SetTo("whatsapp:" + toNumber)
	params.SetBody(body)
	if mediaURL != "" {
		params.SetMediaUrl([]string{mediaURL})
	}
	if _, err := t.api.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}

func (t *TwilioClient) SendCode(ctx context.Context, phone, channel string) (string, error) {
	params := &verify.CreateVerificationParams{}
	params.SetTo(phone)
	params.SetChannel(channel)
	v, err := t.api.VerifyV2.CreateVerification(t.verifyServiceSID, params)
	if err != nil {
		return "", err
	}
	if v.Status == nil {
		return "", nil
	}
	return *v.Status, nil
}

func (t *TwilioClient) CheckCode(ctx context.Context, phone, code string) (string, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(phone)
	params.SetCode(code)
	v, err := t.api.VerifyV2.CreateVerificationCheck(t.verifyServiceSID, params)
	if err != nil {
		return "", err
	}
	if v.Status == nil {
		return "", nil
	}
	return *v.Status, nil
}

// Twilio Verify error codes surfaced to end users.
const (
	codeInvalidPhone    = 60200
	codeMaxCheckReached = 60202
	codeMaxSendReached  = 60203
	codeRateLimited     = 60205
	codeNotFound        = 20404
)

// MapVerifyError translates a Twilio error into an HTTP status and a
// user-facing message. Unknown errors come back as a generic 500.
func MapVerifyError(err error) (int, string) {
	var restErr *twclient.TwilioRestError
	if !errors.As(err, &restErr) {
		return 500, "verification service error"
	}
	switch restErr.Code {
	case codeInvalidPhone:
		return 400, "Invalid phone number format. Please use international format (e.g. +1234567890)."
	case codeMaxCheckReached:
		return 429, "Max check attempts reached. Please request a new code."
	case codeMaxSendReached:
		return 429, "Max verification attempts reached. Please wait before trying again."
	case codeRateLimited:
		return 429, "Too many requests. Please wait a moment and try again."
	case codeNotFound:
		return 404, "Verification expired or not found. Please request a new code."
	default:
		return 500, "verification service error"
	}
}
