package store

import (
	"context"
	"errors"
	"time"

	"signalpost/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertStore struct{ db *gorm.DB }

func (s *Store) Alerts() *AlertStore { return &AlertStore{s.DB} }

func (as *AlertStore) Create(ctx context.Context, a *domain.Alert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return as.db.WithContext(ctx).Create(a).Error
}

func (as *AlertStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	var out domain.Alert
	if err := as.db.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (as *AlertStore) ListSent(ctx context.Context, limit int) ([]domain.Alert, error) {
	var alerts []domain.Alert
	q := as.db.WithContext(ctx).
		Where("status = ?", domain.AlertSent).
		Order("sent_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (as *AlertStore) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return as.db.WithContext(ctx).Model(&domain.Alert{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": domain.AlertSent, "sent_at": at}).Error
}
