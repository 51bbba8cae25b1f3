package models

import (
	"time"

	"gorm.io/gorm"
)

type AdminUser struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string     `gorm:"size:100" json:"name"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Role         string     `gorm:"size:20;not null;default:'STAFF'" json:"role"` // ADMIN | STAFF
	GoogleID     *string    `gorm:"uniqueIndex;size:255" json:"-"`                // nil for password accounts
	LastLoginAt  *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
