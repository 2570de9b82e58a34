package service

import (
	"context"
	"time"
)

// Decision is the outcome of a rate-limit check. ResetAt is a rolling
// estimate (now + window), not the exact expiry of the oldest attempt.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimitService counts timestamped attempt rows per (identifier, action)
// within a trailing window. Storage errors fail open: availability is
// prioritized over strict throttling for this control.
type RateLimitService interface {
	Check(ctx context.Context, identifier, action string, maxAttempts int, window time.Duration) Decision
	// Clear wipes the counter after a successful attempt; calling it again
	// is a no-op.
	Clear(ctx context.Context, identifier, action string) error
	// Sweep prunes attempts older than the retention cutoff. Invoked by an
	// external scheduler, not by request handling.
	Sweep(ctx context.Context, olderThan time.Duration) (int64, error)
}
