package impl

import (
	"context"
	"log/slog"
	"time"

	"signalpost/internal/observability/metrics"
	"signalpost/internal/service"
	"signalpost/internal/store"
)

type rateLimitStore interface {
	CountSince(ctx context.Context, identifier, action string, since time.Time) (int64, error)
	Insert(ctx context.Context, identifier, action string, at time.Time) error
	Clear(ctx context.Context, identifier, action string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type RateLimitServiceImpl struct {
	store rateLimitStore
	now   func() time.Time
}

func NewRateLimitServiceImpl(st *store.Store) *RateLimitServiceImpl {
	return &RateLimitServiceImpl{
		store: gormRateLimitAdapter{st: st},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type gormRateLimitAdapter struct{ st *store.Store }

func (g gormRateLimitAdapter) CountSince(ctx context.Context, identifier, action string, since time.Time) (int64, error) {
	return g.st.RateLimits().CountSince(ctx, identifier, action, since)
}

func (g gormRateLimitAdapter) Insert(ctx context.Context, identifier, action string, at time.Time) error {
	return g.st.RateLimits().Insert(ctx, identifier, action, at)
}

func (g gormRateLimitAdapter) Clear(ctx context.Context, identifier, action string) error {
	return g.st.RateLimits().Clear(ctx, identifier, action)
}

func (g gormRateLimitAdapter) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return g.st.RateLimits().DeleteOlderThan(ctx, cutoff)
}

// Check counts attempts in the trailing window and records this one if it is
// allowed. Storage errors fail open: the attempt is allowed and the error is
// logged. ResetAt is the rolling now+window estimate.
func (r *RateLimitServiceImpl) Check(ctx context.Context, identifier, action string, maxAttempts int, window time.Duration) service.Decision {
	now := r.now()
	resetAt := now.Add(window)

	count, err := r.store.CountSince(ctx, identifier, action, now.Add(-window))
	if err != nil {
		slog.Warn("rate limit check failed open", "action", action, "error", err)
		metrics.RateLimitDecisionsTotal.WithLabelValues(action, "error_open").Inc()
		return service.Decision{Allowed: true, Remaining: maxAttempts - 1, ResetAt: resetAt}
	}

	if count >= int64(maxAttempts) {
		metrics.RateLimitDecisionsTotal.WithLabelValues(action, "blocked").Inc()
		return service.Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	if err := r.store.Insert(ctx, identifier, action, now); err != nil {
		slog.Warn("rate limit insert failed open", "action", action, "error", err)
		metrics.RateLimitDecisionsTotal.WithLabelValues(action, "error_open").Inc()
		return service.Decision{Allowed: true, Remaining: maxAttempts - int(count) - 1, ResetAt: resetAt}
	}

	metrics.RateLimitDecisionsTotal.WithLabelValues(action, "allowed").Inc()
	return service.Decision{
		Allowed:   true,
		Remaining: maxAttempts - int(count) - 1,
		ResetAt:   resetAt,
	}
}

func (r *RateLimitServiceImpl) Clear(ctx context.Context, identifier, action string) error {
	return r.store.Clear(ctx, identifier, action)
}

func (r *RateLimitServiceImpl) Sweep(ctx context.Context, olderThan time.Duration) (int64, error) {
	return r.store.DeleteOlderThan(ctx, r.now().Add(-olderThan))
}
