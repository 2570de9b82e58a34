package domain

import "time"

const (
	SubscriptionActive    = "active"
	SubscriptionPastDue   = "past_due"
	SubscriptionCancelled = "cancelled"
)

// Subscription mirrors whatever the billing provider last told us via
// webhook. The status string is opaque to the auth core.
type Subscription struct {
	UserID      UserID    `gorm:"type:uuid;primaryKey" db:"user_id"`
	Status      string    `gorm:"type:text;not null" db:"status"`
	ProviderRef string    `gorm:"type:text" db:"provider_ref"`
	UpdatedAt   time.Time `gorm:"not null" db:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

func ValidSubscriptionStatus(s string) bool {
	switch s {
	case SubscriptionActive, SubscriptionPastDue, SubscriptionCancelled:
		return true
	}
	return false
}
