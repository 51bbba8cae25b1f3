package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"vietvisa/config"
)

// Sender delivers transactional email; attachmentURL may be empty.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string, attachmentURL string) error
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(cfg *config.ResendConfig) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.FromAddress,
	}
}

func (m *ResendMailer) SendEmail(ctx context.Context, to, subject, htmlBody string, attachmentURL string) error {
	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}
	if attachmentURL != "" {
		req.Attachments = []*resend.Attachment{
			{Path: attachmentURL, Filename: "visa-document.pdf"},
		}
	}
	if _, err := m.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// VisaDocumentHTML renders the delivery email body.
func VisaDocumentHTML(applicantName, referenceNumber string) string {
	return fmt.Sprintf(`<h2>Your Vietnam Visa is Ready!</h2>
<p>Dear %s,</p>
<p>Your visa application <strong>%s</strong> has been approved and your visa
document is attached to this email.</p>
<p>Please print it or save it on your phone to present at Vietnam immigration.</p>
<p>Thank you for using Vietnam Fast Visa!</p>`, applicantName, referenceNumber)
}

// TourInquiryHTML renders the internal notification for a new tour inquiry.
func TourInquiryHTML(name, email, message string) string {
	if name == "" {
		name = "Not provided"
	}
	return fmt.Sprintf(`<h3>New tour inquiry</h3>
<p><strong>From:</strong> %s &lt;%s&gt;</p>
<p>%s</p>`, name, email, message)
}
