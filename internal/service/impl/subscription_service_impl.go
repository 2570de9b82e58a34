package impl

import (
	"context"
	"errors"
	"log/slog"

	"signalpost/internal/domain"
	"signalpost/internal/dto"
	"signalpost/internal/store"

	"github.com/google/uuid"
)

type SubscriptionServiceImpl struct {
	subs subscriberStore
}

func NewSubscriptionServiceImpl(st *store.Store) *SubscriptionServiceImpl {
	return &SubscriptionServiceImpl{subs: st.Subscriptions()}
}

// ApplyEvent upserts the provider's latest view of a subscription. Replayed
// events land on the same row with the same values.
func (s *SubscriptionServiceImpl) ApplyEvent(ctx context.Context, e dto.SubscriptionEvent) error {
	userID, err := uuid.Parse(e.UserID)
	if err != nil {
		return ErrEmptyField
	}
	if !domain.ValidSubscriptionStatus(e.Status) {
		return ErrUnknownStatus
	}
	if err := s.subs.Upsert(ctx, &domain.Subscription{
		UserID:      userID,
		Status:      e.Status,
		ProviderRef: e.ProviderRef,
	}); err != nil {
		return err
	}
	slog.Info("subscription updated", "user_id", userID, "status", e.Status, "provider_ref", e.ProviderRef)
	return nil
}

func (s *SubscriptionServiceImpl) StatusFor(ctx context.Context, userID domain.UserID) (string, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return "", domain.ErrNotSubscribed
		}
		return "", err
	}
	return sub.Status, nil
}
