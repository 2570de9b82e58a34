package store

import (
	"context"
	"errors"
	"time"

	"signalpost/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResetTokenStore struct{ db *gorm.DB }

func (s *Store) ResetTokens() *ResetTokenStore { return &ResetTokenStore{s.DB} }

func (rs *ResetTokenStore) Create(ctx context.Context, t *domain.PasswordResetToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return rs.db.WithContext(ctx).Create(t).Error
}

// Get returns the token row whether or not it is expired or used; validity
// checks belong to the caller so it can distinguish the error cases.
func (rs *ResetTokenStore) Get(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	var out domain.PasswordResetToken
	if err := rs.db.WithContext(ctx).First(&out, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (rs *ResetTokenStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return rs.db.WithContext(ctx).Model(&domain.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used", true).Error
}

func (rs *ResetTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := rs.db.WithContext(ctx).Delete(&domain.PasswordResetToken{}, "expires_at <= ?", now)
	return tx.RowsAffected, tx.Error
}

type VerificationTokenStore struct{ db *gorm.DB }

func (s *Store) VerificationTokens() *VerificationTokenStore {
	return &VerificationTokenStore{s.DB}
}

func (vs *VerificationTokenStore) Create(ctx context.Context, t *domain.EmailVerificationToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return vs.db.WithContext(ctx).Create(t).Error
}

func (vs *VerificationTokenStore) Get(ctx context.Context, token string) (*domain.EmailVerificationToken, error) {
	var out domain.EmailVerificationToken
	if err := vs.db.WithContext(ctx).First(&out, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &out, nil
}

// Consume deletes the row; verification tokens have no used flag.
func (vs *VerificationTokenStore) Consume(ctx context.Context, token string) error {
	return vs.db.WithContext(ctx).Delete(&domain.EmailVerificationToken{}, "token = ?", token).Error
}

func (vs *VerificationTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := vs.db.WithContext(ctx).Delete(&domain.EmailVerificationToken{}, "expires_at <= ?", now)
	return tx.RowsAffected, tx.Error
}
