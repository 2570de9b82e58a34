package service

import (
	"context"

	"signalpost/internal/domain"
	"signalpost/internal/dto"
)

// AlertService is the newsletter back office: admins compose drafts and
// broadcast them to active subscribers.
type AlertService interface {
	Compose(ctx context.Context, r dto.ComposeAlertRequest, createdBy domain.UserID) (*domain.Alert, error)
	// Broadcast sends the draft to every active subscriber. Per-recipient
	// failures are logged and counted; the broadcast continues.
	Broadcast(ctx context.Context, alertID domain.AlertID) (*dto.BroadcastResult, error)
	ListSent(ctx context.Context, limit int) ([]domain.Alert, error)
	// Unsubscribe redeems a signed unsubscribe link token.
	Unsubscribe(ctx context.Context, token string) error
}

// SubscriptionService is the billing webhook write-side.
type SubscriptionService interface {
	// ApplyEvent is idempotent: replaying the same provider event is a no-op.
	ApplyEvent(ctx context.Context, e dto.SubscriptionEvent) error
	StatusFor(ctx context.Context, userID domain.UserID) (string, error)
}
