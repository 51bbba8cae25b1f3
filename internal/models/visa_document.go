package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisaDocument is the issued visa artifact for one applicant. Send attempts
// update the per-channel flags; the record itself is never replaced.
type VisaDocument struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	ApplicantID   string `gorm:"size:36;not null;index" json:"applicant_id"`
	ApplicationID string `gorm:"size:36;not null;index" json:"application_id"`

	DocumentURL string `gorm:"size:512;not null" json:"document_url"`
	UploadedBy  string `gorm:"size:255" json:"uploaded_by"`

	SentToWhatsApp bool       `json:"sent_to_whatsapp"`
	WhatsAppSentAt *time.Time `json:"whatsapp_sent_at"`
	SentToEmail    bool       `json:"sent_to_email"`
	EmailSentAt    *time.Time `json:"email_sent_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (VisaDocument) TableName() string {
	return "visa_documents"
}

func (d *VisaDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
