package models

import "time"

type TourInquiry struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100" json:"name"`
	Email    string `gorm:"size:255;not null;index" json:"email"`
	Message  string `gorm:"type:text;not null" json:"message"`
	TourSlug string `gorm:"size:100;index" json:"tour_slug"`
	Status   string `gorm:"size:20;not null;default:'new';index" json:"status"` // new | replied | closed

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TourInquiry) TableName() string {
	return "tour_inquiries"
}
