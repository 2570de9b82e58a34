package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"signalpost/internal/domain"
	"signalpost/internal/dto"
	"signalpost/internal/observability/metrics"
	"signalpost/internal/observability/middleware"
	"signalpost/internal/service"
	"signalpost/internal/store"

	"github.com/google/uuid"
)

const (
	actionLogin        = "login"
	actionSignup       = "signup"
	actionResetRequest = "password_reset"
)

// resetRequestMessage is returned whether or not the email is registered.
const resetRequestMessage = "If that email is registered, a reset link has been sent."

type AuthConfig struct {
	BaseURL string // used for links in verification and reset emails

	VerifyTokenTTL time.Duration // default 24h
	ResetTokenTTL  time.Duration // default 1h

	LoginMaxAttempts  int           // default 5
	LoginWindow       time.Duration // default 15m
	SignupMaxAttempts int           // default 3, per IP
	SignupWindow      time.Duration // default 1h
	ResetMaxAttempts  int           // default 3
	ResetWindow       time.Duration // default 1h
}

func (c *AuthConfig) applyDefaults() {
	if c.VerifyTokenTTL <= 0 {
		c.VerifyTokenTTL = 24 * time.Hour
	}
	if c.ResetTokenTTL <= 0 {
		c.ResetTokenTTL = time.Hour
	}
	if c.LoginMaxAttempts <= 0 {
		c.LoginMaxAttempts = 5
	}
	if c.LoginWindow <= 0 {
		c.LoginWindow = 15 * time.Minute
	}
	if c.SignupMaxAttempts <= 0 {
		c.SignupMaxAttempts = 3
	}
	if c.SignupWindow <= 0 {
		c.SignupWindow = time.Hour
	}
	if c.ResetMaxAttempts <= 0 {
		c.ResetMaxAttempts = 3
	}
	if c.ResetWindow <= 0 {
		c.ResetWindow = time.Hour
	}
}

type AuthServiceImpl struct {
	cfg      AuthConfig
	Store    authStore
	Password service.PasswordService
	Sessions service.SessionService
	Limiter  service.RateLimitService
	Mail     service.MailService

	now func() time.Time
}

func NewAuthServiceImpl(cfg AuthConfig, st *store.Store, pw service.PasswordService, sessions service.SessionService, limiter service.RateLimitService, mailer service.MailService) *AuthServiceImpl {
	cfg.applyDefaults()
	return &AuthServiceImpl{
		cfg:      cfg,
		Store:    gormAuthAdapter{st: st},
		Password: pw,
		Sessions: sessions,
		Limiter:  limiter,
		Mail:     mailer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Narrow store surface so tests can run against an in-memory stub.

type authStore interface {
	WithTx(ctx context.Context, fn func(tx authTx) error) error
	Users() authUserStore
	ResetTokens() resetTokenStore
	VerificationTokens() verificationTokenStore
}

type authTx interface {
	Users() authUserStore
	VerificationTokens() verificationTokenStore
}

type authUserStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetEmailVerified(ctx context.Context, userID uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}

type resetTokenStore interface {
	Create(ctx context.Context, t *domain.PasswordResetToken) error
	Get(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

type verificationTokenStore interface {
	Create(ctx context.Context, t *domain.EmailVerificationToken) error
	Get(ctx context.Context, token string) (*domain.EmailVerificationToken, error)
	Consume(ctx context.Context, token string) error
}

type gormAuthAdapter struct{ st *store.Store }

func (g gormAuthAdapter) WithTx(ctx context.Context, fn func(tx authTx) error) error {
	if g.st == nil {
		return errors.New("nil store")
	}
	return g.st.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormAuthTxAdapter{tx: tx})
	})
}

func (g gormAuthAdapter) Users() authUserStore { return g.st.Users() }

func (g gormAuthAdapter) ResetTokens() resetTokenStore { return g.st.ResetTokens() }

func (g gormAuthAdapter) VerificationTokens() verificationTokenStore {
	return g.st.VerificationTokens()
}

type gormAuthTxAdapter struct{ tx *store.Store }

func (g gormAuthTxAdapter) Users() authUserStore { return g.tx.Users() }

func (g gormAuthTxAdapter) VerificationTokens() verificationTokenStore {
	return g.tx.VerificationTokens()
}

// ====== Signup ======

func (a *AuthServiceImpl) Signup(ctx context.Context, r dto.SignupRequest, ip, ua string) (*dto.AuthResponse, *http.Cookie, error) {
	result := "success"
	defer func() { metrics.AuthSignupsTotal.WithLabelValues(result).Inc() }()

	if err := validateEmail(r.Email); err != nil {
		result = "invalid"
		return nil, nil, err
	}
	if err := validatePassword(r.Password); err != nil {
		result = "invalid"
		return nil, nil, err
	}

	if d := a.Limiter.Check(ctx, ip, actionSignup, a.cfg.SignupMaxAttempts, a.cfg.SignupWindow); !d.Allowed {
		result = "rate_limited"
		return nil, nil, &domain.RateLimitedError{ResetAt: d.ResetAt}
	}

	hash, err := a.Password.Hash(r.Password)
	if err != nil {
		result = "failure"
		return nil, nil, err
	}

	var (
		user        *domain.User
		verifyToken string
	)
	err = a.Store.WithTx(ctx, func(tx authTx) error {
		now := a.now()
		user = &domain.User{
			ID:           uuid.New(),
			Email:        r.Email,
			PasswordHash: hash,
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err // unique constraint surfaces as domain.ErrDuplicateEmail
		}

		verifyToken, err = newToken()
		if err != nil {
			return err
		}
		return tx.VerificationTokens().Create(ctx, &domain.EmailVerificationToken{
			UserID:    user.ID,
			Token:     verifyToken,
			ExpiresAt: now.Add(a.cfg.VerifyTokenTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			result = "duplicate"
		} else {
			result = "failure"
		}
		return nil, nil, err
	}

	_, cookie, err := a.Sessions.Create(ctx, user.ID, ip, ua)
	if err != nil {
		result = "failure"
		return nil, nil, err
	}

	// The verification send is decoupled from the request path: the account
	// row is already committed, so a mail outage must not fail the signup.
	a.sendVerificationAsync(ctx, user.Email, verifyToken)

	return &dto.AuthResponse{
		UserID:                    user.ID.String(),
		Email:                     user.Email,
		RequiresEmailVerification: true,
	}, cookie, nil
}

func (a *AuthServiceImpl) sendVerificationAsync(ctx context.Context, email, token string) {
	reqID := middleware.RequestIDFromContext(ctx)
	link := fmt.Sprintf("%s/verify-email?token=%s", a.cfg.BaseURL, token)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		body := fmt.Sprintf("<p>Welcome to Signalpost. Confirm your email address:</p><p><a href=%q>%s</a></p>", link, link)
		if err := a.Mail.Send(sendCtx, email, "Confirm your email", body); err != nil {
			metrics.MailSendsTotal.WithLabelValues("verification", "failure").Inc()
			slog.Error("verification email send failed", "request_id", reqID, "error", err)
			return
		}
		metrics.MailSendsTotal.WithLabelValues("verification", "success").Inc()
	}()
}

// ====== Login ======

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.AuthResponse, *http.Cookie, error) {
	result := "success"
	defer func() { metrics.AuthLoginsTotal.WithLabelValues(result).Inc() }()

	if r.Email == "" || r.Password == "" {
		result = "invalid"
		return nil, nil, domain.ErrInvalidCredentials
	}

	if d := a.Limiter.Check(ctx, r.Email, actionLogin, a.cfg.LoginMaxAttempts, a.cfg.LoginWindow); !d.Allowed {
		result = "rate_limited"
		return nil, nil, &domain.RateLimitedError{ResetAt: d.ResetAt}
	}

	// One generic failure for unknown email and wrong password alike.
	user, err := a.Store.Users().GetByEmail(ctx, r.Email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			result = "failure"
			return nil, nil, domain.ErrInvalidCredentials
		}
		result = "error"
		return nil, nil, err
	}

	ok, rehashNeeded := a.Password.Verify(r.Password, user.PasswordHash)
	if !ok {
		result = "failure"
		return nil, nil, domain.ErrInvalidCredentials
	}

	// Transparent policy upgrade; losing it is not worth failing the login.
	if rehashNeeded {
		if newHash, err := a.Password.Hash(r.Password); err == nil {
			if err := a.Store.Users().UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
				slog.Warn("password rehash persist failed", "user_id", user.ID, "error", err)
			}
		}
	}

	// A successful login resets the window; earlier failures stop counting.
	if err := a.Limiter.Clear(ctx, r.Email, actionLogin); err != nil {
		slog.Warn("rate limit clear failed", "action", actionLogin, "error", err)
	}

	_, cookie, err := a.Sessions.Create(ctx, user.ID, ip, ua)
	if err != nil {
		result = "error"
		return nil, nil, err
	}

	slog.Info("login", "user_id", user.ID, "request_id", middleware.RequestIDFromContext(ctx))
	return &dto.AuthResponse{UserID: user.ID.String(), Email: user.Email}, cookie, nil
}

func (a *AuthServiceImpl) Logout(ctx context.Context, token string) (*http.Cookie, error) {
	return a.Sessions.Destroy(ctx, token)
}

// ====== Email verification ======

func (a *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenInvalid
	}
	rec, err := a.Store.VerificationTokens().Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrTokenInvalid
		}
		return err
	}
	if !a.now().Before(rec.ExpiresAt) {
		return domain.ErrTokenInvalid
	}
	if err := a.Store.Users().SetEmailVerified(ctx, rec.UserID); err != nil {
		return err
	}
	return a.Store.VerificationTokens().Consume(ctx, token)
}

func (a *AuthServiceImpl) ResendVerification(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrTokenInvalid
	}
	user, err := a.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrTokenInvalid
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}

	token, err := newToken()
	if err != nil {
		return err
	}
	now := a.now()
	if err := a.Store.VerificationTokens().Create(ctx, &domain.EmailVerificationToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(a.cfg.VerifyTokenTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}
	a.sendVerificationAsync(ctx, user.Email, token)
	return nil
}

// ====== Password reset ======

// RequestPasswordReset always answers with the same generic response so the
// endpoint cannot be used to enumerate registered addresses.
func (a *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email, ip string) dto.ResetRequestResponse {
	generic := dto.ResetRequestResponse{Success: true, Message: resetRequestMessage}

	if validateEmail(email) != nil {
		return generic
	}
	if d := a.Limiter.Check(ctx, email, actionResetRequest, a.cfg.ResetMaxAttempts, a.cfg.ResetWindow); !d.Allowed {
		return generic
	}

	user, err := a.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			slog.Error("reset request lookup failed", "error", err)
		}
		return generic
	}

	token, err := newToken()
	if err != nil {
		slog.Error("reset token generation failed", "error", err)
		return generic
	}
	now := a.now()
	if err := a.Store.ResetTokens().Create(ctx, &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(a.cfg.ResetTokenTTL),
		CreatedAt: now,
	}); err != nil {
		slog.Error("reset token persist failed", "user_id", user.ID, "error", err)
		return generic
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", a.cfg.BaseURL, token)
	body := fmt.Sprintf("<p>Reset your Signalpost password:</p><p><a href=%q>%s</a></p><p>The link expires in one hour.</p>", link, link)
	if err := a.Mail.Send(ctx, user.Email, "Reset your password", body); err != nil {
		metrics.MailSendsTotal.WithLabelValues("password_reset", "failure").Inc()
		slog.Error("reset email send failed", "user_id", user.ID, "error", err)
	} else {
		metrics.MailSendsTotal.WithLabelValues("password_reset", "success").Inc()
	}
	return generic
}

func (a *AuthServiceImpl) VerifyResetToken(ctx context.Context, token string) error {
	_, err := a.validResetToken(ctx, token)
	return err
}

func (a *AuthServiceImpl) ResetPassword(ctx context.Context, r dto.ResetConfirmRequest) error {
	if err := validatePassword(r.NewPassword); err != nil {
		return err
	}
	rec, err := a.validResetToken(ctx, r.Token)
	if err != nil {
		return err
	}

	hash, err := a.Password.Hash(r.NewPassword)
	if err != nil {
		return err
	}
	if err := a.Store.Users().UpdatePasswordHash(ctx, rec.UserID, hash); err != nil {
		return err
	}
	if err := a.Store.ResetTokens().MarkUsed(ctx, rec.ID); err != nil {
		return err
	}

	// Force re-login everywhere; the old credential may be compromised.
	n, err := a.Sessions.DestroyAllForUser(ctx, rec.UserID)
	if err != nil {
		return err
	}
	slog.Info("password reset", "user_id", rec.UserID, "sessions_invalidated", n)
	return nil
}

func (a *AuthServiceImpl) validResetToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}
	rec, err := a.Store.ResetTokens().Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if rec.Used {
		return nil, domain.ErrTokenUsed
	}
	if !a.now().Before(rec.ExpiresAt) {
		return nil, domain.ErrTokenInvalid
	}
	return rec, nil
}

// ====== Validation ======

func validateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < 8 {
		return ErrPasswordLength
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordWeak
	}
	return nil
}
