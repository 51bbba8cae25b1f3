package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Applicant struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	ApplicationID string `gorm:"size:36;not null;index" json:"application_id"`

	FullName     string     `gorm:"size:255;not null" json:"full_name"`
	Nationality  string     `gorm:"size:100;not null" json:"nationality"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Gender       string     `gorm:"size:10" json:"gender"`
	Religion     string     `gorm:"size:50" json:"religion"`
	PlaceOfBirth string     `gorm:"size:100" json:"place_of_birth"`

	PassportNumber     string     `gorm:"size:20;not null;index" json:"passport_number"`
	PassportType       string     `gorm:"size:20" json:"passport_type"`
	PassportIssueDate  *time.Time `json:"passport_issue_date"`
	PassportExpiryDate *time.Time `json:"passport_expiry_date"`
	IssuingAuthority   string     `gorm:"size:100" json:"issuing_authority"`

	PermanentAddress string `gorm:"size:255" json:"permanent_address"`
	ContactAddress   string `gorm:"size:255" json:"contact_address"`
	Telephone        string `gorm:"size:32" json:"telephone"`

	EmergencyContactName         string `gorm:"size:255" json:"emergency_contact_name"`
	EmergencyContactAddress      string `gorm:"size:255" json:"emergency_contact_address"`
	EmergencyContactPhone        string `gorm:"size:32" json:"emergency_contact_phone"`
	EmergencyContactRelationship string `gorm:"size:50" json:"emergency_contact_relationship"`

	// Uploaded artifacts
	PassportScanURL string `gorm:"size:512" json:"passport_scan_url"`
	PortraitURL     string `gorm:"size:512" json:"portrait_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Documents []VisaDocument `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

func (Applicant) TableName() string {
	return "applicants"
}

func (a *Applicant) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// ApplicantUpdate carries the staff-editable fields. Each field is optional;
// only non-nil fields reach the store.
type ApplicantUpdate struct {
	FullName     *string    `json:"full_name"`
	Nationality  *string    `json:"nationality"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Gender       *string    `json:"gender"`
	Religion     *string    `json:"religion"`
	PlaceOfBirth *string    `json:"place_of_birth"`

	PassportNumber     *string    `json:"passport_number"`
	PassportType       *string    `json:"passport_type"`
	PassportIssueDate  *time.Time `json:"passport_issue_date"`
	PassportExpiryDate *time.Time `json:"passport_expiry_date"`
	IssuingAuthority   *string    `json:"issuing_authority"`

	PermanentAddress *string `json:"permanent_address"`
	ContactAddress   *string `json:"contact_address"`
	Telephone        *string `json:"telephone"`

	EmergencyContactName         *string `json:"emergency_contact_name"`
	EmergencyContactAddress      *string `json:"emergency_contact_address"`
	EmergencyContactPhone        *string `json:"emergency_contact_phone"`
	EmergencyContactRelationship *string `json:"emergency_contact_relationship"`
}

// Fields returns the column updates for the non-nil members.
func (u *ApplicantUpdate) Fields() map[string]interface{} {
	set := map[string]interface{}{}
	put := func(col string, v interface{}, ok bool) {
		if ok {
			set[col] = v
		}
	}
	put("full_name", deref(u.FullName), u.FullName != nil)
	put("nationality", deref(u.Nationality), u.Nationality != nil)
	put("date_of_birth", u.DateOfBirth, u.DateOfBirth != nil)
	put("gender", deref(u.Gender), u.Gender != nil)
	put("religion", deref(u.Religion), u.Religion != nil)
	put("place_of_birth", deref(u.PlaceOfBirth), u.PlaceOfBirth != nil)
	put("passport_number", deref(u.PassportNumber), u.PassportNumber != nil)
	put("passport_type", deref(u.PassportType), u.PassportType != nil)
	put("passport_issue_date", u.PassportIssueDate, u.PassportIssueDate != nil)
	put("passport_expiry_date", u.PassportExpiryDate, u.PassportExpiryDate != nil)
	put("issuing_authority", deref(u.IssuingAuthority), u.IssuingAuthority != nil)
	put("permanent_address", deref(u.PermanentAddress), u.PermanentAddress != nil)
	put("contact_address", deref(u.ContactAddress), u.ContactAddress != nil)
	put("telephone", deref(u.Telephone), u.Telephone != nil)
	put("emergency_contact_name", deref(u.EmergencyContactName), u.EmergencyContactName != nil)
	put("emergency_contact_address", deref(u.EmergencyContactAddress), u.EmergencyContactAddress != nil)
	put("emergency_contact_phone", deref(u.EmergencyContactPhone), u.EmergencyContactPhone != nil)
	put("emergency_contact_relationship", deref(u.EmergencyContactRelationship), u.EmergencyContactRelationship != nil)
	return set
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
