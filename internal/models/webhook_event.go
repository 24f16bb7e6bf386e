package models

import "time"

// WebhookEvent processed provider webhook event (idempotency guard)
type WebhookEvent struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Provider    string     `gorm:"type:varchar(20);not null;default:'stripe'" json:"provider"`
	EventID     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"event_id"`
	EventType   string     `gorm:"type:varchar(60);index" json:"event_type"`
	Payload     string     `gorm:"type:text" json:"-"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

// TableName sets the table name
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
