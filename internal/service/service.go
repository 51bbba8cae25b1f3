package service

import (
	"errors"

	"vietvisa/internal/domain"
	"vietvisa/internal/models"
	"vietvisa/internal/repository"
)

// Failure classes shared across services; handlers map these to HTTP codes.
var (
	ErrNotFound              = errors.New("record not found")
	ErrAlreadyPaid           = errors.New("application has already been paid")
	ErrInvalidSignature      = errors.New("webhook signature verification failed")
	ErrInconsistentReference = errors.New("document, applicant and application do not belong together")
	ErrStaleStatus           = errors.New("application status changed concurrently")
	ErrDispatchOnly          = errors.New("status \"delivered\" is set by document dispatch, not directly")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrNotStaff              = errors.New("account is not authorized for the back office")
)

// ValidationError carries a user-facing message for malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string) error { return &ValidationError{Msg: msg} }

// ApplicationStore is the subset of the application repository the services
// depend on. *repository.ApplicationRepository satisfies it.
type ApplicationStore interface {
	CreateWithApplicants(app *models.Application) error
	GetByID(id string) (*models.Application, error)
	GetDetail(id string) (*models.Application, error)
	SetPaymentIntentID(id, intentID string) error
	MarkPaid(id, method string) (bool, error)
	MarkPaymentFailed(id string) error
	TransitionStatus(id string, from, to domain.Status, extra map[string]interface{}) (bool, error)
	UpdateFields(id string, updates map[string]interface{}) error
}

type ApplicantStore interface {
	GetByID(id string) (*models.Applicant, error)
}

type DocumentStore interface {
	GetByID(id string) (*models.VisaDocument, error)
	MarkWhatsAppSent(id string) error
	MarkEmailSent(id string) error
}

type InquiryStore interface {
	Create(i *models.TourInquiry) error
}

type AdminStore interface {
	GetByEmail(email string) (*models.AdminUser, error)
	GetByID(id uint) (*models.AdminUser, error)
	GetByGoogleID(googleID string) (*models.AdminUser, error)
	Update(u *models.AdminUser) error
	TouchLogin(id uint) error
}

// EventPublisher feeds the back-office dashboard; implemented by ws.Hub.
type EventPublisher interface {
	Publish(eventType, applicationID string, data map[string]interface{})
}

var _ ApplicationStore = (*repository.ApplicationRepository)(nil)
var _ ApplicantStore = (*repository.ApplicantRepository)(nil)
var _ DocumentStore = (*repository.DocumentRepository)(nil)
var _ InquiryStore = (*repository.InquiryRepository)(nil)
var _ AdminStore = (*repository.AdminRepository)(nil)
