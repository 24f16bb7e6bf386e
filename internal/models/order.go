package models

import (
	"time"

	"gorm.io/gorm"
)

// Order order table
type Order struct {
	ID                   uint           `gorm:"primarykey" json:"id"`
	OrderNumber          int64          `gorm:"uniqueIndex;not null" json:"order_number"` // monotonic, assigned from the locked counter
	DistributorID        uint           `gorm:"index;not null" json:"distributor_id"`
	CustomerID           *uint          `gorm:"index" json:"customer_id,omitempty"` // nil for guest orders
	GuestName            string         `gorm:"default:''" json:"guest_name,omitempty"`
	GuestPhone           string         `gorm:"type:varchar(20);index" json:"guest_phone,omitempty"` // digits only, 55 prefixed
	Status               string         `gorm:"type:varchar(30);index;not null" json:"status"`
	OrderType            string         `gorm:"type:varchar(20);not null" json:"order_type"` // imediato / agendado
	ScheduledDate        *time.Time     `gorm:"index" json:"scheduled_date,omitempty"`
	DeliveryPeriod       string         `gorm:"type:varchar(20)" json:"delivery_period,omitempty"` // "HH:MM-HH:MM" slot
	CEP                  string         `gorm:"type:varchar(8)" json:"cep"`
	Street               string         `gorm:"default:''" json:"street"`
	Number               string         `gorm:"type:varchar(20);default:''" json:"number"`
	Complement           string         `gorm:"default:''" json:"complement"`
	Neighborhood         string         `gorm:"default:''" json:"neighborhood"`
	City                 string         `gorm:"default:''" json:"city"`
	UF                   string         `gorm:"type:varchar(2)" json:"uf"`
	PaymentMethod        string         `gorm:"type:varchar(20);not null" json:"payment_method"` // dinheiro / pix / cartao
	ChangeFor            *Money         `gorm:"type:decimal(20,2)" json:"change_for,omitempty"`  // cash only
	Subtotal             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	DiscountAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`
	Total                Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`
	Notes                string         `gorm:"default:''" json:"notes,omitempty"`
	LoyaltyPointsAwarded bool           `gorm:"not null;default:false" json:"loyalty_points_awarded"`
	ConfirmedAt          *time.Time     `json:"confirmed_at"`
	DeliveredAt          *time.Time     `gorm:"index" json:"delivered_at"`
	CanceledAt           *time.Time     `gorm:"index" json:"canceled_at"`
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName sets the table name
func (Order) TableName() string {
	return "orders"
}
