package models

import "time"

// Subscription local cache of a distributor's Stripe subscription state
type Subscription struct {
	ID                   uint       `gorm:"primarykey" json:"id"`
	DistributorID        uint       `gorm:"uniqueIndex;not null" json:"distributor_id"`
	Plan                 string     `gorm:"type:varchar(20);default:''" json:"plan"` // monthly / annual
	Status               string     `gorm:"type:varchar(30);not null;default:'incomplete';index" json:"status"`
	StripeCustomerID     string     `gorm:"type:varchar(100);index" json:"-"`
	StripeSubscriptionID string     `gorm:"type:varchar(100);index" json:"-"`
	StartedAt            *time.Time `json:"started_at"`
	CurrentPeriodEnd     *time.Time `gorm:"index" json:"current_period_end"`
	CanceledAt           *time.Time `json:"canceled_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TableName sets the table name
func (Subscription) TableName() string {
	return "subscriptions"
}

// ActiveAt reports whether the subscription grants access at t.
// Expiry wins over status: a stale active row past its period end is not active.
func (s *Subscription) ActiveAt(t time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != "active" {
		return false
	}
	if s.CurrentPeriodEnd != nil && !s.CurrentPeriodEnd.After(t) {
		return false
	}
	return true
}
