package store

import (
	"context"
	"errors"
	"time"

	"signalpost/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s.DB} }

func (ss *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	return ss.db.WithContext(ctx).Create(sess).Error
}

// GetWithUser resolves an unexpired session and its owning user.
// Expired-but-present rows are treated as absent; they are not deleted
// here (the retention sweep reclaims them).
func (ss *SessionStore) GetWithUser(ctx context.Context, token string, now time.Time) (*domain.Session, *domain.User, error) {
	var sess domain.Session
	err := ss.db.WithContext(ctx).
		First(&sess, "token = ? AND expires_at > ?", token, now).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRecordNotFound
		}
		return nil, nil, err
	}

	var user domain.User
	err = ss.db.WithContext(ctx).First(&user, "id = ?", sess.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRecordNotFound
		}
		return nil, nil, err
	}
	return &sess, &user, nil
}

func (ss *SessionStore) Delete(ctx context.Context, token string) error {
	return ss.db.WithContext(ctx).Delete(&domain.Session{}, "token = ?", token).Error
}

func (ss *SessionStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx := ss.db.WithContext(ctx).Delete(&domain.Session{}, "user_id = ?", userID)
	return tx.RowsAffected, tx.Error
}

func (ss *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := ss.db.WithContext(ctx).Delete(&domain.Session{}, "expires_at <= ?", now)
	return tx.RowsAffected, tx.Error
}
