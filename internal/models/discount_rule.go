package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountRule quantity tier discount for a distributor
type DiscountRule struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	DistributorID uint            `gorm:"not null;index" json:"distributor_id"`
	MinQuantity   int             `gorm:"not null" json:"min_quantity"`              // >= 1
	MaxQuantity   *int            `gorm:"" json:"max_quantity,omitempty"`            // nil = open-ended tier
	Percent       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percent"` // (0, 100]
	IsActive      bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName sets the table name
func (DiscountRule) TableName() string {
	return "discount_rules"
}

// Matches reports whether the given cart quantity falls in this tier
func (r *DiscountRule) Matches(quantity int) bool {
	if quantity < r.MinQuantity {
		return false
	}
	if r.MaxQuantity != nil && quantity > *r.MaxQuantity {
		return false
	}
	return true
}
