package models

import "time"

// CustomerLoyaltyPoints points balance of one customer at one distributor
type CustomerLoyaltyPoints struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CustomerID     uint      `gorm:"not null;uniqueIndex:idx_loyalty_customer_distributor" json:"customer_id"`
	DistributorID  uint      `gorm:"not null;uniqueIndex:idx_loyalty_customer_distributor" json:"distributor_id"`
	TotalPoints    int       `gorm:"not null;default:0" json:"total_points"`
	RedeemedPoints int       `gorm:"not null;default:0" json:"redeemed_points"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the table name
func (CustomerLoyaltyPoints) TableName() string {
	return "customer_loyalty_points"
}

// Available returns total minus redeemed (never negative by invariant)
func (p *CustomerLoyaltyPoints) Available() int {
	return p.TotalPoints - p.RedeemedPoints
}
