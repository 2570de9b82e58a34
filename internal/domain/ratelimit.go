package domain

import "time"

// RateLimitAttempt rows are append-only within a trailing window and pruned
// by the retention sweep.
type RateLimitAttempt struct {
	ID         TokenID   `gorm:"type:uuid;primaryKey" db:"id"`
	Identifier string    `gorm:"type:text;index:ix_rate_limits_key" db:"identifier"`
	Action     string    `gorm:"type:text;index:ix_rate_limits_key" db:"action"`
	CreatedAt  time.Time `gorm:"not null;index" db:"created_at"`
}

func (RateLimitAttempt) TableName() string { return "rate_limits" }
