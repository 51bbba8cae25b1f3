package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vietvisa/config"
	"vietvisa/internal/domain"
	"vietvisa/internal/models"
)

type IntakeService struct {
	apps    ApplicationStore
	pricing config.PricingConfig
	events  EventPublisher
	log     *zap.Logger
}

func NewIntakeService(apps ApplicationStore, pricing config.PricingConfig, events EventPublisher, log *zap.Logger) *IntakeService {
	return &IntakeService{apps: apps, pricing: pricing, events: events, log: log}
}

type ApplicantInput struct {
	FullName       string `json:"full_name" binding:"required"`
	Nationality    string `json:"nationality" binding:"required"`
	PassportNumber string `json:"passport_number" binding:"required"`
	DateOfBirth    string `json:"date_of_birth" binding:"required"` // YYYY-MM-DD
	Gender         string `json:"gender"`
	Email          string `json:"email"`
	WhatsApp       string `json:"whatsapp"`
}

type IntakeInput struct {
	EntryDate   string           `json:"entry_date" binding:"required"` // YYYY-MM-DD
	ExitDate    string           `json:"exit_date" binding:"required"`
	ArrivalPort string           `json:"arrival_port" binding:"required"`
	EntryType   string           `json:"entry_type"`
	VisaSpeed   string           `json:"visa_speed"`
	Language    string           `json:"language"`
	Applicants  []ApplicantInput `json:"applicants" binding:"required,min=1"`
}

type IntakeResult struct {
	ApplicationID   string          `json:"application_id"`
	ReferenceNumber string          `json:"reference_number"`
	Amount          decimal.Decimal `json:"amount"`
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Create validates the form, prices the order, and persists the application
// together with its applicants atomically.
func (s *IntakeService) Create(ctx context.Context, in IntakeInput) (*IntakeResult, error) {
	entry, err := time.Parse("2006-01-02", in.EntryDate)
	if err != nil {
		return nil, validationErr("invalid entry_date format (use YYYY-MM-DD)")
	}
	exit, err := time.Parse("2006-01-02", in.ExitDate)
	if err != nil {
		return nil, validationErr("invalid exit_date format (use YYYY-MM-DD)")
	}
	if !exit.After(entry) {
		return nil, validationErr("exit_date must be after entry_date")
	}
	entryType := in.EntryType
	if entryType == "" {
		entryType = domain.EntrySingle
	}
	if entryType != domain.EntrySingle && entryType != domain.EntryMultiple {
		return nil, validationErr("entry_type must be \"single\" or \"multiple\"")
	}
	speed := in.VisaSpeed
	if speed == "" {
		speed = domain.SpeedStandard
	}
	if speed != domain.SpeedStandard && speed != domain.SpeedUrgent {
		return nil, validationErr("visa_speed must be \"standard\" or \"urgent\"")
	}
	if len(in.Applicants) == 0 {
		return nil, validationErr("at least one applicant is required")
	}

	primary := in.Applicants[0]
	if !emailRe.MatchString(primary.Email) {
		return nil, validationErr("a valid contact email is required on the first applicant")
	}

	applicants := make([]models.Applicant, 0, len(in.Applicants))
	for _, a := range in.Applicants {
		if a.FullName == "" || a.Nationality == "" || a.PassportNumber == "" {
			return nil, validationErr("applicant name, nationality and passport number are required")
		}
		dob, err := time.Parse("2006-01-02", a.DateOfBirth)
		if err != nil {
			return nil, validationErr("invalid date_of_birth format (use YYYY-MM-DD)")
		}
		applicants = append(applicants, models.Applicant{
			FullName:       a.FullName,
			Nationality:    a.Nationality,
			PassportNumber: strings.ToUpper(a.PassportNumber),
			DateOfBirth:    &dob,
			Gender:         a.Gender,
		})
	}

	amount := s.priceFor(entryType, speed, len(applicants))
	language := strings.ToUpper(in.Language)
	if language == "" {
		language = "EN"
	}

	app := &models.Application{
		ReferenceNumber: newReference(),
		EntryDate:       entry,
		ExitDate:        exit,
		EntryPort:       in.ArrivalPort,
		EntryType:       entryType,
		VisaSpeed:       speed,
		Email:           strings.ToLower(primary.Email),
		WhatsApp:        primary.WhatsApp,
		Language:        language,
		AmountUSD:       amount,
		PaymentStatus:   domain.PaymentPending,
		Status:          domain.StatusPendingPayment,
		Applicants:      applicants,
	}
	if err := s.apps.CreateWithApplicants(app); err != nil {
		s.log.Error("application create failed", zap.Error(err))
		return nil, err
	}

	s.log.Info("application created",
		zap.String("application_id", app.ID),
		zap.String("reference", app.ReferenceNumber),
		zap.Int("applicants", len(applicants)),
		zap.String("amount_usd", amount.String()))
	if s.events != nil {
		s.events.Publish("application.created", app.ID, map[string]interface{}{
			"reference": app.ReferenceNumber,
			"email":     app.Email,
		})
	}
	return &IntakeResult{
		ApplicationID:   app.ID,
		ReferenceNumber: app.ReferenceNumber,
		Amount:          amount,
	}, nil
}

func (s *IntakeService) priceFor(entryType, speed string, applicants int) decimal.Decimal {
	perPerson := decimal.NewFromFloat(s.pricing.SingleEntryUSD)
	if entryType == domain.EntryMultiple {
		perPerson = perPerson.Add(decimal.NewFromFloat(s.pricing.MultipleEntrySurcharge))
	}
	if speed == domain.SpeedUrgent {
		perPerson = perPerson.Add(decimal.NewFromFloat(s.pricing.UrgentSurcharge))
	}
	return perPerson.Mul(decimal.NewFromInt(int64(applicants))).Round(2)
}

func newReference() string {
	return "VN-" + strings.ToUpper(uuid.NewString()[:8])
}
