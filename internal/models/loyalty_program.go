package models

import "time"

// LoyaltyProgram per-distributor loyalty configuration (one row per tenant)
type LoyaltyProgram struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	DistributorID     uint      `gorm:"uniqueIndex;not null" json:"distributor_id"`
	IsEnabled         bool      `gorm:"not null;default:false" json:"is_enabled"`
	PointsPerOrder    int       `gorm:"not null;default:1" json:"points_per_order"`
	RewardThreshold   int       `gorm:"not null;default:10" json:"reward_threshold"`
	RewardDescription string    `gorm:"default:''" json:"reward_description"`
	MinOrderValue     *Money    `gorm:"type:decimal(20,2)" json:"min_order_value,omitempty"` // orders below this accrue nothing
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName sets the table name
func (LoyaltyProgram) TableName() string {
	return "loyalty_programs"
}
