package repository

import (
	"time"

	"gorm.io/gorm"

	"vietvisa/internal/domain"
	"vietvisa/internal/models"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// CreateWithApplicants inserts the application and its applicants in a single
// transaction; no partial applicant rows survive a failed create.
func (r *ApplicationRepository) CreateWithApplicants(app *models.Application) error {
	return r.db.Create(app).Error
}

func (r *ApplicationRepository) GetByID(id string) (*models.Application, error) {
	var app models.Application
	err := r.db.Preload("Applicants").First(&app, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetDetail loads the application with applicants and their documents.
func (r *ApplicationRepository) GetDetail(id string) (*models.Application, error) {
	var app models.Application
	err := r.db.Preload("Applicants").Preload("Applicants.Documents").First(&app, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByReference(ref, email string) (*models.Application, error) {
	var app models.Application
	err := r.db.Preload("Applicants").
		Where("reference_number = ? AND email = ?", ref, email).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByPaymentIntentID(intentID string) (*models.Application, error) {
	var app models.Application
	err := r.db.Where("payment_intent_id = ?", intentID).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListFilter narrows the admin application listing.
type ListFilter struct {
	Status        string
	PaymentStatus string
	VisaSpeed     string
	Search        string // matches reference number or email
	Page          int
	Limit         int
}

func (r *ApplicationRepository) List(f ListFilter) ([]models.Application, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	q := r.db.Model(&models.Application{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.VisaSpeed != "" {
		q = q.Where("visa_speed = ?", f.VisaSpeed)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("reference_number LIKE ? OR email LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var apps []models.Application
	err := q.Preload("Applicants").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&apps).Error
	return apps, total, err
}

func (r *ApplicationRepository) SetPaymentIntentID(id, intentID string) error {
	return r.db.Model(&models.Application{}).Where("id = ?", id).
		Update("payment_intent_id", intentID).Error
}

// MarkPaid completes payment and enters payment_received in one conditional
// update. Returns false when the payment was already completed, which makes
// webhook replays a detectable no-op.
func (r *ApplicationRepository) MarkPaid(id, method string) (bool, error) {
	res := r.db.Model(&models.Application{}).
		Where("id = ? AND payment_status <> ?", id, domain.PaymentCompleted).
		Updates(map[string]interface{}{
			"payment_status": domain.PaymentCompleted,
			"status":         domain.StatusPaymentReceived,
			"payment_method": method,
			"paid_at":        time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// MarkPaymentFailed records a failed charge without touching the lifecycle
// status.
func (r *ApplicationRepository) MarkPaymentFailed(id string) error {
	return r.db.Model(&models.Application{}).Where("id = ?", id).
		Update("payment_status", domain.PaymentFailed).Error
}

// TransitionStatus moves id from -> to only if the persisted status still
// equals from. extra carries transition side effects (timestamps, notes).
// Returns false when the row was not in the expected state.
func (r *ApplicationRepository) TransitionStatus(id string, from, to domain.Status, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.Model(&models.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// UpdateFields applies non-status admin edits (notes, visa speed).
func (r *ApplicationRepository) UpdateFields(id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.Model(&models.Application{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
