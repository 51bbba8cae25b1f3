package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vietvisa/internal/domain"
)

type Application struct {
	ID              string `gorm:"primaryKey;size:36" json:"id"`
	ReferenceNumber string `gorm:"uniqueIndex;size:16;not null" json:"reference_number"`

	// Trip details
	EntryDate time.Time `json:"entry_date"`
	ExitDate  time.Time `json:"exit_date"`
	EntryPort string    `gorm:"size:100" json:"entry_port"`
	EntryType string    `gorm:"size:10;default:'single'" json:"entry_type"` // single | multiple
	VisaSpeed string    `gorm:"size:10;default:'standard'" json:"visa_speed"`

	// Contact
	Email    string `gorm:"size:255;not null;index" json:"email"`
	WhatsApp string `gorm:"size:32" json:"whatsapp"`
	Language string `gorm:"size:5;default:'EN'" json:"language"`

	// Commercial
	AmountUSD       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_usd"`
	PaymentStatus   string          `gorm:"size:20;not null;index;default:'pending'" json:"payment_status"`
	PaymentMethod   string          `gorm:"size:30" json:"payment_method"`
	PaymentIntentID string          `gorm:"size:255;index" json:"payment_intent_id"`

	Status domain.Status `gorm:"size:20;not null;index;default:'pending_payment'" json:"status"`
	Notes  string        `gorm:"type:text" json:"notes"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PaidAt      *time.Time `json:"paid_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	DeliveredAt *time.Time `json:"delivered_at"`

	Applicants []Applicant `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"applicants,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
