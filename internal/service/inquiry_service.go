package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"vietvisa/internal/models"
	"vietvisa/pkg/mailer"
)

type InquiryService struct {
	inquiries    InquiryStore
	mail         mailer.Sender
	supportEmail string
	log          *zap.Logger
}

func NewInquiryService(inquiries InquiryStore, mail mailer.Sender, supportEmail string, log *zap.Logger) *InquiryService {
	return &InquiryService{inquiries: inquiries, mail: mail, supportEmail: supportEmail, log: log}
}

type InquiryInput struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Message  string `json:"message" binding:"required"`
	TourSlug string `json:"tour_slug"`
}

// Submit records the inquiry and notifies the support inbox. The notification
// is best effort; a mail failure never fails the submission.
func (s *InquiryService) Submit(ctx context.Context, in InquiryInput) (*models.TourInquiry, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !emailRe.MatchString(email) {
		return nil, validationErr("a valid email is required")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, validationErr("message must not be empty")
	}

	inquiry := &models.TourInquiry{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Message:  message,
		TourSlug: in.TourSlug,
		Status:   "new",
	}
	if err := s.inquiries.Create(inquiry); err != nil {
		s.log.Error("inquiry create failed", zap.Error(err))
		return nil, err
	}

	go func() {
		subject := "New tour inquiry from " + email
		html := mailer.TourInquiryHTML(inquiry.Name, inquiry.Email, inquiry.Message)
		if err := s.mail.SendEmail(context.Background(), s.supportEmail, subject, html, ""); err != nil {
			s.log.Warn("inquiry notification failed",
				zap.Uint("inquiry_id", inquiry.ID), zap.Error(err))
			return
		}
		s.log.Info("inquiry notification sent", zap.Uint("inquiry_id", inquiry.ID))
	}()

	return inquiry, nil
}
