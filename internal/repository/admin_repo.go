package repository

import (
	"time"

	"gorm.io/gorm"

	"vietvisa/internal/models"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(email string) (*models.AdminUser, error) {
	var u models.AdminUser
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AdminRepository) GetByID(id uint) (*models.AdminUser, error) {
	var u models.AdminUser
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AdminRepository) GetByGoogleID(googleID string) (*models.AdminUser, error) {
	var u models.AdminUser
	err := r.db.Where("google_id = ?", googleID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AdminRepository) Create(u *models.AdminUser) error {
	return r.db.Create(u).Error
}

func (r *AdminRepository) Update(u *models.AdminUser) error {
	return r.db.Save(u).Error
}

func (r *AdminRepository) TouchLogin(id uint) error {
	return r.db.Model(&models.AdminUser{}).Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}
