package models

import (
	"time"

	"gorm.io/gorm"
)

// User account table (customers, distributor owners and admins)
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Name               string         `gorm:"default:''" json:"name"`
	Phone              string         `gorm:"index" json:"phone"` // digits only, country code 55 prefixed
	Role               string         `gorm:"type:varchar(20);not null;default:'customer';index" json:"role"`
	Status             string         `gorm:"default:'active'" json:"status"`
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"` // bump to invalidate all tokens
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`
	LastLoginAt        *time.Time     `json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name
func (User) TableName() string {
	return "users"
}
