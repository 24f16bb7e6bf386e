package models

import "time"

// UserLoginLog login attempt log table
type UserLoginLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"` // nil when the email matched no account
	Email      string    `gorm:"index" json:"email"`
	Status     string    `gorm:"type:varchar(20);not null;index" json:"status"`
	FailReason string    `gorm:"type:varchar(40)" json:"fail_reason,omitempty"`
	ClientIP   string    `gorm:"type:varchar(64)" json:"client_ip"`
	UserAgent  string    `gorm:"type:varchar(300)" json:"user_agent"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name
func (UserLoginLog) TableName() string {
	return "user_login_logs"
}
