package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vietvisa/internal/domain"
	"vietvisa/pkg/mailer"
	"vietvisa/pkg/messaging"
)

type DispatchService struct {
	apps       ApplicationStore
	applicants ApplicantStore
	docs       DocumentStore
	wa         messaging.Sender
	mail       mailer.Sender
	events     EventPublisher
	log        *zap.Logger
}

func NewDispatchService(apps ApplicationStore, applicants ApplicantStore, docs DocumentStore, wa messaging.Sender, mail mailer.Sender, events EventPublisher, log *zap.Logger) *DispatchService {
	return &DispatchService{apps: apps, applicants: applicants, docs: docs, wa: wa, mail: mail, events: events, log: log}
}

type ChannelResult struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type DispatchResult struct {
	WhatsApp  ChannelResult `json:"whatsapp"`
	Email     ChannelResult `json:"email"`
	Delivered bool          `json:"delivered"`
}

// Dispatch sends the issued visa document over both channels. A channel that
// already succeeded on an earlier attempt is not resent; a failure on one
// channel never aborts the other. The application moves to delivered only
// when both channel flags are set.
func (s *DispatchService) Dispatch(ctx context.Context, applicationID, applicantID, documentID string) (*DispatchResult, error) {
	doc, err := s.docs.GetByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	applicant, err := s.applicants.GetByID(applicantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	app, err := s.apps.GetByID(applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.ApplicantID != applicant.ID || applicant.ApplicationID != app.ID || doc.ApplicationID != app.ID {
		return nil, ErrInconsistentReference
	}

	result := &DispatchResult{
		WhatsApp: ChannelResult{Channel: "whatsapp"},
		Email:    ChannelResult{Channel: "email"},
	}

	if doc.SentToWhatsApp {
		result.WhatsApp.Success = true
	} else {
		body := fmt.Sprintf(`*Your Vietnam Visa is Ready!*

Reference: %s
Applicant: %s

Your visa document is attached. Please print it or save it on your phone to present at Vietnam immigration.

Thank you for using Vietnam Fast Visa!`, app.ReferenceNumber, applicant.FullName)
		if err := s.wa.SendMessage(ctx, app.WhatsApp, body, doc.DocumentURL); err != nil {
			s.log.Warn("whatsapp send failed",
				zap.String("application_id", app.ID), zap.Error(err))
			result.WhatsApp.Error = err.Error()
		} else if err := s.docs.MarkWhatsAppSent(doc.ID); err != nil {
			s.log.Error("failed to record whatsapp send",
				zap.String("document_id", doc.ID), zap.Error(err))
			result.WhatsApp.Error = err.Error()
		} else {
			result.WhatsApp.Success = true
		}
	}

	if doc.SentToEmail {
		result.Email.Success = true
	} else {
		subject := "Your Vietnam Visa is Ready - " + app.ReferenceNumber
		html := mailer.VisaDocumentHTML(applicant.FullName, app.ReferenceNumber)
		if err := s.mail.SendEmail(ctx, app.Email, subject, html, doc.DocumentURL); err != nil {
			s.log.Warn("email send failed",
				zap.String("application_id", app.ID), zap.Error(err))
			result.Email.Error = err.Error()
		} else if err := s.docs.MarkEmailSent(doc.ID); err != nil {
			s.log.Error("failed to record email send",
				zap.String("document_id", doc.ID), zap.Error(err))
			result.Email.Error = err.Error()
		} else {
			result.Email.Success = true
		}
	}

	if result.WhatsApp.Success && result.Email.Success {
		ok, err := s.apps.TransitionStatus(app.ID, domain.StatusApproved, domain.StatusDelivered,
			map[string]interface{}{"delivered_at": time.Now()})
		if err != nil {
			return nil, err
		}
		if !ok && app.Status != domain.StatusDelivered {
			s.log.Warn("both channels sent but application was not in approved state",
				zap.String("application_id", app.ID), zap.String("status", string(app.Status)))
		}
		result.Delivered = true
		if s.events != nil {
			s.events.Publish("application.dispatched", app.ID, map[string]interface{}{
				"document_id": doc.ID,
			})
		}
	}
	return result, nil
}
