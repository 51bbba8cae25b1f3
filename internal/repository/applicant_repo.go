package repository

import (
	"errors"

	"gorm.io/gorm"

	"vietvisa/internal/models"
)

// ErrNoFields is returned when an update carries nothing from the allow-list.
var ErrNoFields = errors.New("no valid fields to update")

type ApplicantRepository struct {
	db *gorm.DB
}

func NewApplicantRepository(db *gorm.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

func (r *ApplicantRepository) GetByID(id string) (*models.Applicant, error) {
	var a models.Applicant
	err := r.db.First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update applies the allow-listed staff edits and returns the updated row.
func (r *ApplicantRepository) Update(id string, upd *models.ApplicantUpdate) (*models.Applicant, error) {
	fields := upd.Fields()
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	res := r.db.Model(&models.Applicant{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(id)
}

// SetArtifact records an uploaded passport scan or portrait URL.
func (r *ApplicantRepository) SetArtifact(id, column, url string) error {
	res := r.db.Model(&models.Applicant{}).Where("id = ?", id).Update(column, url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
