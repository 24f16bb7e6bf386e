package models

import (
	"time"

	"gorm.io/gorm"
)

// Brand water brand table (shared catalog dimension)
type Brand struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	LogoURL   string         `gorm:"type:varchar(500)" json:"logo_url"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name
func (Brand) TableName() string {
	return "brands"
}
