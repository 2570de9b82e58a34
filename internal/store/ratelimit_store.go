package store

import (
	"context"
	"time"

	"signalpost/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RateLimitStore struct{ db *gorm.DB }

func (s *Store) RateLimits() *RateLimitStore { return &RateLimitStore{s.DB} }

func (rs *RateLimitStore) CountSince(ctx context.Context, identifier, action string, since time.Time) (int64, error) {
	var count int64
	err := rs.db.WithContext(ctx).Model(&domain.RateLimitAttempt{}).
		Where("identifier = ? AND action = ? AND created_at > ?", identifier, action, since).
		Count(&count).Error
	return count, err
}

func (rs *RateLimitStore) Insert(ctx context.Context, identifier, action string, at time.Time) error {
	return rs.db.WithContext(ctx).Create(&domain.RateLimitAttempt{
		ID:         uuid.New(),
		Identifier: identifier,
		Action:     action,
		CreatedAt:  at,
	}).Error
}

func (rs *RateLimitStore) Clear(ctx context.Context, identifier, action string) error {
	return rs.db.WithContext(ctx).
		Delete(&domain.RateLimitAttempt{}, "identifier = ? AND action = ?", identifier, action).Error
}

func (rs *RateLimitStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := rs.db.WithContext(ctx).Delete(&domain.RateLimitAttempt{}, "created_at <= ?", cutoff)
	return tx.RowsAffected, tx.Error
}
