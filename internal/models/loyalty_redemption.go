package models

import "time"

// LoyaltyRedemption audit row for a points redemption
type LoyaltyRedemption struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	Reference         string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"reference"` // nanoid shown to the distributor
	CustomerID        uint       `gorm:"not null;index" json:"customer_id"`
	DistributorID     uint       `gorm:"not null;index" json:"distributor_id"`
	Points            int        `gorm:"not null" json:"points"`
	RewardDescription string     `gorm:"default:''" json:"reward_description"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ConfirmedAt       *time.Time `json:"confirmed_at"`
	RejectedAt        *time.Time `json:"rejected_at"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName sets the table name
func (LoyaltyRedemption) TableName() string {
	return "loyalty_redemptions"
}
