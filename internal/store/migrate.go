package store

import (
	"context"

	"signalpost/internal/domain"
)

// Migrate performs schema migrations for the persistent models.
func (s *Store) Migrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.RateLimitAttempt{},
		&domain.PasswordResetToken{},
		&domain.EmailVerificationToken{},
		&domain.Subscription{},
		&domain.Alert{},
	)
}
