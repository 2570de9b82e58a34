package store

import (
	"context"
	"errors"
	"time"

	"signalpost/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionStore struct{ db *gorm.DB }

func (s *Store) Subscriptions() *SubscriptionStore { return &SubscriptionStore{s.DB} }

// Upsert writes the provider's latest view of a subscription. Replaying the
// same webhook event lands on the same row with the same values.
func (ss *SubscriptionStore) Upsert(ctx context.Context, sub *domain.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()
	return ss.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "provider_ref", "updated_at"}),
	}).Create(sub).Error
}

func (ss *SubscriptionStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	var out domain.Subscription
	if err := ss.db.WithContext(ctx).First(&out, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &out, nil
}

// ListActive returns the users with an active subscription, for broadcast.
func (ss *SubscriptionStore) ListActive(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := ss.db.WithContext(ctx).Model(&domain.User{}).
		Joins("JOIN subscriptions ON subscriptions.user_id = users.id").
		Where("subscriptions.status = ?", domain.SubscriptionActive).
		Order("users.created_at asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
