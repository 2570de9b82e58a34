package domain

import "time"

// Session maps an opaque random token to a user until its expiry passes.
// The token itself is the primary key; there is no sliding renewal.
type Session struct {
	Token     string    `gorm:"type:text;primaryKey" db:"id"`
	UserID    UserID    `gorm:"type:uuid;index" db:"user_id"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
	IP        string    `gorm:"type:text" db:"ip"`
	UserAgent string    `gorm:"type:text" db:"user_agent"`
}

func (Session) TableName() string { return "sessions" }

func (s *Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }
