package models

import "time"

// BusinessHour opening hours for one weekday of a distributor
type BusinessHour struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	DistributorID uint      `gorm:"not null;uniqueIndex:idx_business_hours_dist_weekday" json:"distributor_id"`
	Weekday       int       `gorm:"not null;uniqueIndex:idx_business_hours_dist_weekday" json:"weekday"` // 0 = Sunday .. 6 = Saturday
	IsOpen        bool      `gorm:"not null;default:false" json:"is_open"`
	OpensAt       string    `gorm:"type:varchar(5)" json:"opens_at"`  // "HH:MM"
	ClosesAt      string    `gorm:"type:varchar(5)" json:"closes_at"` // "HH:MM", strictly after opens_at
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName sets the table name
func (BusinessHour) TableName() string {
	return "business_hours"
}
