package domain

import "time"

// PasswordResetToken is single-use: the used flag flips on first successful
// redemption and the row is never reused even before expiry.
type PasswordResetToken struct {
	ID        TokenID   `gorm:"type:uuid;primaryKey" db:"id"`
	UserID    UserID    `gorm:"type:uuid;index" db:"user_id"`
	Token     string    `gorm:"type:text;uniqueIndex:ux_reset_token" db:"token"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at"`
	Used      bool      `gorm:"not null;default:false" db:"used"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

// EmailVerificationToken is consumed by deleting the row.
type EmailVerificationToken struct {
	ID        TokenID   `gorm:"type:uuid;primaryKey" db:"id"`
	UserID    UserID    `gorm:"type:uuid;index" db:"user_id"`
	Token     string    `gorm:"type:text;uniqueIndex:ux_verify_token" db:"token"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (EmailVerificationToken) TableName() string { return "email_verification_tokens" }
