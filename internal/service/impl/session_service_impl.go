package impl

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"signalpost/internal/domain"
	"signalpost/internal/netutil"
	"signalpost/internal/service"
	"signalpost/internal/store"
)

const SessionCookieName = "sp_session"

type SessionConfig struct {
	TTL    time.Duration // e.g. 30 * 24h
	Secure bool          // true in production
}

type sessionStore interface {
	Create(ctx context.Context, sess *domain.Session) error
	GetWithUser(ctx context.Context, token string, now time.Time) (*domain.Session, *domain.User, error)
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID domain.UserID) (int64, error)
}

type SessionServiceImpl struct {
	cfg   SessionConfig
	store sessionStore
	now   func() time.Time
}

func NewSessionServiceImpl(cfg SessionConfig, st *store.Store) *SessionServiceImpl {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return &SessionServiceImpl{cfg: cfg, store: gormSessionAdapter{st: st}, now: func() time.Time { return time.Now().UTC() }}
}

type gormSessionAdapter struct{ st *store.Store }

func (g gormSessionAdapter) Create(ctx context.Context, sess *domain.Session) error {
	return g.st.Sessions().Create(ctx, sess)
}

func (g gormSessionAdapter) GetWithUser(ctx context.Context, token string, now time.Time) (*domain.Session, *domain.User, error) {
	return g.st.Sessions().GetWithUser(ctx, token, now)
}

func (g gormSessionAdapter) Delete(ctx context.Context, token string) error {
	return g.st.Sessions().Delete(ctx, token)
}

func (g gormSessionAdapter) DeleteAllForUser(ctx context.Context, userID domain.UserID) (int64, error) {
	return g.st.Sessions().DeleteAllForUser(ctx, userID)
}

// newToken returns 256 bits of entropy, base64url encoded.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *SessionServiceImpl) Create(ctx context.Context, userID domain.UserID, ip, ua string) (string, *http.Cookie, error) {
	token, err := newToken()
	if err != nil {
		return "", nil, err
	}
	now := s.now()
	expires := now.Add(s.cfg.TTL)

	normIP := ip
	if n, ok := netutil.NormalizeIP(ip); ok {
		normIP = n
	}
	sess := &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expires,
		CreatedAt: now,
		IP:        normIP,
		UserAgent: netutil.TruncateUserAgent(ua),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return "", nil, err
	}
	return token, s.cookie(token, expires), nil
}

// Get returns nil for a missing or expired session; expired rows are left in
// place for the retention sweep.
func (s *SessionServiceImpl) Get(ctx context.Context, token string) (*service.Identity, error) {
	if token == "" {
		return nil, nil
	}
	sess, user, err := s.store.GetWithUser(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service.Identity{User: user, Session: sess}, nil
}

func (s *SessionServiceImpl) Destroy(ctx context.Context, token string) (*http.Cookie, error) {
	if token != "" {
		if err := s.store.Delete(ctx, token); err != nil {
			return nil, err
		}
	}
	return s.clearingCookie(), nil
}

func (s *SessionServiceImpl) DestroyAllForUser(ctx context.Context, userID domain.UserID) (int64, error) {
	return s.store.DeleteAllForUser(ctx, userID)
}

func (s *SessionServiceImpl) cookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *SessionServiceImpl) clearingCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
