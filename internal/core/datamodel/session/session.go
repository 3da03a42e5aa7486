package session

import "time"

// Session is a server-side login session row. A session is live only while
// is_active is true and expires_at is in the future.
type Session struct {
	ID             string    `gorm:"primaryKey;column:id"`
	UserID         int64     `gorm:"column:user_id;not null;index"`
	RefreshTokenID string    `gorm:"column:refresh_token_id;not null;index"`
	UserAgent      string    `gorm:"column:user_agent"`
	IPAddress      string    `gorm:"column:ip_address"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	LastActiveAt   time.Time `gorm:"column:last_active_at;not null"`
	ExpiresAt      time.Time `gorm:"column:expires_at;not null"`
	IsActive       bool      `gorm:"column:is_active;default:true"`
}

func (Session) TableName() string {
	return "sessions"
}
