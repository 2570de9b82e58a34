package service

import (
	"context"
	"net/http"

	"signalpost/internal/domain"
)

// Identity is what an authenticated request resolves to.
type Identity struct {
	User    *domain.User
	Session *domain.Session
}

// SessionService owns the opaque-token session lifecycle and the cookie
// contract. A session is active from creation until its expiry passes or it
// is explicitly destroyed; there is no sliding renewal.
type SessionService interface {
	Create(ctx context.Context, userID domain.UserID, ip, ua string) (token string, cookie *http.Cookie, err error)
	// Get returns nil (not an error) for missing or expired sessions.
	Get(ctx context.Context, token string) (*Identity, error)
	Destroy(ctx context.Context, token string) (*http.Cookie, error)
	DestroyAllForUser(ctx context.Context, userID domain.UserID) (int64, error)
}
