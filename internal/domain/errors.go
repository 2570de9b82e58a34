package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrRateLimited        = errors.New("rate limited")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrTokenUsed          = errors.New("token already used")
	ErrNotSubscribed      = errors.New("no active subscription")
)

// RateLimitedError carries the retry horizon so handlers can render a
// human-readable wait-time message. errors.Is(err, ErrRateLimited) matches.
type RateLimitedError struct {
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.ResetAt.UTC().Format(time.RFC3339))
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// RetryAfter reports the wait in whole minutes, rounded up, never below one.
func (e *RateLimitedError) RetryAfter(now time.Time) time.Duration {
	d := e.ResetAt.Sub(now)
	if d <= 0 {
		return time.Minute
	}
	m := d.Truncate(time.Minute)
	if m < d {
		m += time.Minute
	}
	return m
}
