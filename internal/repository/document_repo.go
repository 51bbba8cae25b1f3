package repository

import (
	"time"

	"gorm.io/gorm"

	"vietvisa/internal/models"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(d *models.VisaDocument) error {
	return r.db.Create(d).Error
}

func (r *DocumentRepository) GetByID(id string) (*models.VisaDocument, error) {
	var d models.VisaDocument
	err := r.db.First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// MarkWhatsAppSent flips only the messaging channel flag; a resend updates
// the timestamp, never creates a new record.
func (r *DocumentRepository) MarkWhatsAppSent(id string) error {
	return r.db.Model(&models.VisaDocument{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"sent_to_whatsapp": true,
			"whatsapp_sent_at": time.Now(),
		}).Error
}

func (r *DocumentRepository) MarkEmailSent(id string) error {
	return r.db.Model(&models.VisaDocument{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"sent_to_email": true,
			"email_sent_at": time.Now(),
		}).Error
}
