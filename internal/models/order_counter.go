package models

import "time"

// OrderCounter single-row counter behind monotonic order numbers.
// Incremented under a row lock inside the order creation transaction.
type OrderCounter struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	LastNumber int64     `gorm:"not null;default:0" json:"last_number"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName sets the table name
func (OrderCounter) TableName() string {
	return "order_counters"
}
