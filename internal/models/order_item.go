package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem order line item (immutable product snapshot)
type OrderItem struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	ProductID   uint            `gorm:"index;not null" json:"product_id"`
	ProductName string          `gorm:"not null" json:"product_name"`
	BrandName   string          `gorm:"default:''" json:"brand_name"`
	Liters      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"liters"`
	UnitPrice   Money           `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"` // > 0
	TotalPrice  Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // quantity * unit_price
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName sets the table name
func (OrderItem) TableName() string {
	return "order_items"
}
