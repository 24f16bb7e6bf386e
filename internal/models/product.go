package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product distributor catalog item (gallon, pack, accessory)
type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	DistributorID uint            `gorm:"not null;index" json:"distributor_id"`
	BrandID       *uint           `gorm:"index" json:"brand_id,omitempty"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"default:''" json:"description"`
	Liters        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"liters"`
	Price         Money           `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // must be > 0
	ImageURL      string          `gorm:"type:varchar(500)" json:"image_url"`
	IsAvailable   bool            `gorm:"default:true;index" json:"is_available"`
	SortOrder     int             `gorm:"default:0;index" json:"sort_order"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	Brand *Brand `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
}

// TableName sets the table name
func (Product) TableName() string {
	return "products"
}
