package models

import (
	"time"

	"gorm.io/gorm"
)

// Distributor water distributor (tenant) table
type Distributor struct {
	ID                    uint           `gorm:"primarykey" json:"id"`
	UserID                uint           `gorm:"uniqueIndex;not null" json:"user_id"` // owner account
	TradeName             string         `gorm:"not null" json:"trade_name"`
	CorporateName         string         `gorm:"default:''" json:"corporate_name"`
	CNPJ                  string         `gorm:"type:varchar(14);uniqueIndex;not null" json:"cnpj"` // digits only
	Slug                  string         `gorm:"uniqueIndex;not null" json:"slug"`
	WhatsApp              string         `gorm:"type:varchar(20);not null" json:"whatsapp"` // digits only, 55 prefixed
	LogoURL               string         `gorm:"type:varchar(500)" json:"logo_url"`
	CEP                   string         `gorm:"type:varchar(8)" json:"cep"`
	Street                string         `gorm:"default:''" json:"street"`
	Number                string         `gorm:"type:varchar(20);default:''" json:"number"`
	Complement            string         `gorm:"default:''" json:"complement"`
	Neighborhood          string         `gorm:"default:''" json:"neighborhood"`
	City                  string         `gorm:"default:''" json:"city"`
	UF                    string         `gorm:"type:varchar(2)" json:"uf"`
	IsActive              bool           `gorm:"default:true;index" json:"is_active"`
	OnboardingCompletedAt *time.Time     `json:"onboarding_completed_at"`
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	BusinessHours []BusinessHour `gorm:"foreignKey:DistributorID" json:"business_hours,omitempty"`
	Products      []Product      `gorm:"foreignKey:DistributorID" json:"products,omitempty"`
}

// TableName sets the table name
func (Distributor) TableName() string {
	return "distributors"
}

// OnboardingComplete reports whether the minimum profile has been filled
func (d *Distributor) OnboardingComplete() bool {
	return d.OnboardingCompletedAt != nil
}
