package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signalpost/internal/domain"
	"signalpost/internal/dto"
	"signalpost/internal/service"
	impl "signalpost/internal/service/impl"

	"github.com/google/uuid"
)

type stubAuthService struct {
	signupRes *dto.AuthResponse
	signupErr error
	loginRes  *dto.AuthResponse
	loginErr  error
	verifyErr error
	resetErr  error
}

func (s *stubAuthService) Signup(ctx context.Context, r dto.SignupRequest, ip, ua string) (*dto.AuthResponse, *http.Cookie, error) {
	if s.signupErr != nil {
		return nil, nil, s.signupErr
	}
	return s.signupRes, &http.Cookie{Name: impl.SessionCookieName, Value: "tok-1", Path: "/"}, nil
}

func (s *stubAuthService) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.AuthResponse, *http.Cookie, error) {
	if s.loginErr != nil {
		return nil, nil, s.loginErr
	}
	return s.loginRes, &http.Cookie{Name: impl.SessionCookieName, Value: "tok-1", Path: "/"}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, token string) (*http.Cookie, error) {
	return &http.Cookie{Name: impl.SessionCookieName, Value: "", MaxAge: -1, Path: "/"}, nil
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, token string) error { return s.verifyErr }

func (s *stubAuthService) ResendVerification(ctx context.Context, userID string) error { return nil }

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email, ip string) dto.ResetRequestResponse {
	return dto.ResetRequestResponse{Success: true, Message: "If that email is registered, a reset link has been sent."}
}

func (s *stubAuthService) VerifyResetToken(ctx context.Context, token string) error { return s.resetErr }

func (s *stubAuthService) ResetPassword(ctx context.Context, r dto.ResetConfirmRequest) error {
	return s.resetErr
}

type stubSessionService struct {
	identities map[string]*service.Identity
}

func (s *stubSessionService) Create(ctx context.Context, userID domain.UserID, ip, ua string) (string, *http.Cookie, error) {
	return "tok-1", &http.Cookie{Name: impl.SessionCookieName, Value: "tok-1"}, nil
}

func (s *stubSessionService) Get(ctx context.Context, token string) (*service.Identity, error) {
	return s.identities[token], nil
}

func (s *stubSessionService) Destroy(ctx context.Context, token string) (*http.Cookie, error) {
	return &http.Cookie{Name: impl.SessionCookieName, MaxAge: -1}, nil
}

func (s *stubSessionService) DestroyAllForUser(ctx context.Context, userID domain.UserID) (int64, error) {
	return 0, nil
}

type stubAlertService struct {
	composed       *domain.Alert
	composeErr     error
	broadcastRes   *dto.BroadcastResult
	broadcastErr   error
	unsubscribeErr error
}

func (s *stubAlertService) Compose(ctx context.Context, r dto.ComposeAlertRequest, createdBy domain.UserID) (*domain.Alert, error) {
	return s.composed, s.composeErr
}

func (s *stubAlertService) Broadcast(ctx context.Context, alertID domain.AlertID) (*dto.BroadcastResult, error) {
	return s.broadcastRes, s.broadcastErr
}

func (s *stubAlertService) ListSent(ctx context.Context, limit int) ([]domain.Alert, error) {
	return nil, nil
}

func (s *stubAlertService) Unsubscribe(ctx context.Context, token string) error {
	return s.unsubscribeErr
}

type stubSubscriptionService struct {
	applied   []dto.SubscriptionEvent
	status    string
	statusErr error
}

func (s *stubSubscriptionService) ApplyEvent(ctx context.Context, e dto.SubscriptionEvent) error {
	s.applied = append(s.applied, e)
	return nil
}

func (s *stubSubscriptionService) StatusFor(ctx context.Context, userID domain.UserID) (string, error) {
	if s.statusErr != nil {
		return "", s.statusErr
	}
	if s.status == "" {
		return "", domain.ErrNotSubscribed
	}
	return s.status, nil
}

func newTestRouter(t *testing.T) (*Handlers, http.Handler, *stubAuthService, *stubSessionService, *stubAlertService, *stubSubscriptionService) {
	t.Helper()
	auth := &stubAuthService{}
	sessions := &stubSessionService{identities: map[string]*service.Identity{}}
	alerts := &stubAlertService{}
	subs := &stubSubscriptionService{}
	h := &Handlers{Auth: auth, Sessions: sessions, Alerts: alerts, Subscriptions: subs}
	return h, NewRouter(h), auth, sessions, alerts, subs
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:51234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{Name: impl.SessionCookieName, Value: token}
}

func TestHealthz(t *testing.T) {
	_, router, _, _, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}

func TestSignupSetsCookie(t *testing.T) {
	_, router, auth, _, _, _ := newTestRouter(t)
	auth.signupRes = &dto.AuthResponse{UserID: uuid.NewString(), Email: "a@x.com", RequiresEmailVerification: true}

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/signup",
		`{"email":"a@x.com","password":"Passw0rd!","firstName":"Jo","lastName":"Do"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == impl.SessionCookieName && c.Value == "tok-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("session cookie missing: %v", rec.Result().Cookies())
	}

	var res dto.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.RequiresEmailVerification {
		t.Fatalf("unexpected body: %+v", res)
	}
}

func TestSignupErrorMapping(t *testing.T) {
	_, router, auth, _, _, _ := newTestRouter(t)

	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrDuplicateEmail, http.StatusConflict},
		{impl.ErrPasswordWeak, http.StatusBadRequest},
		{impl.ErrInvalidEmail, http.StatusBadRequest},
	}
	for _, tc := range cases {
		auth.signupErr = tc.err
		rec := doJSON(t, router, http.MethodPost, "/v1/auth/signup", `{"email":"a@x.com","password":"x"}`)
		if rec.Code != tc.code {
			t.Fatalf("%v: status %d, want %d", tc.err, rec.Code, tc.code)
		}
	}
}

func TestSignupRejectsMalformedJSON(t *testing.T) {
	_, router, _, _, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/signup", `{"email":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestLoginFailuresStayGeneric(t *testing.T) {
	_, router, auth, _, _, _ := newTestRouter(t)
	auth.loginErr = domain.ErrInvalidCredentials

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", `{"email":"a@x.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
		t.Fatalf("body leaks detail: %s", rec.Body.String())
	}
}

func TestLoginRateLimitedRendersWaitMinutes(t *testing.T) {
	_, router, auth, _, _, _ := newTestRouter(t)
	auth.loginErr = &domain.RateLimitedError{ResetAt: time.Now().UTC().Add(15 * time.Minute)}

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", `{"email":"a@x.com","password":"x"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Too many attempts. Try again in 15 minutes.") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	_, router, _, _, _, _ := newTestRouter(t)

	for _, path := range []string{"/v1/auth/me", "/v1/alerts"} {
		rec := doJSON(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without cookie: %d", path, rec.Code)
		}
		rec = doJSON(t, router, http.MethodGet, path, "", sessionCookie("stale"))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s with unknown token: %d", path, rec.Code)
		}
	}
}

func TestMeIncludesSubscriptionStatus(t *testing.T) {
	_, router, _, sessions, _, subs := newTestRouter(t)
	subs.status = domain.SubscriptionActive
	sessions.identities["tok-1"] = &service.Identity{
		User:    &domain.User{ID: uuid.New(), Email: "a@x.com", FirstName: "Jo", EmailVerified: true},
		Session: &domain.Session{Token: "tok-1"},
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/auth/me", "", sessionCookie("tok-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Email        string `json:"email"`
		Subscription string `json:"subscription"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Email != "a@x.com" || body.Subscription != domain.SubscriptionActive {
		t.Fatalf("body: %+v", body)
	}
}

func TestMeSurfacesSubscriptionLookupFailure(t *testing.T) {
	_, router, _, sessions, _, subs := newTestRouter(t)
	subs.statusErr = errors.New("connection refused")
	sessions.identities["tok-1"] = &service.Identity{
		User:    &domain.User{ID: uuid.New(), Email: "a@x.com", EmailVerified: true},
		Session: &domain.Session{Token: "tok-1"},
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/auth/me", "", sessionCookie("tok-1"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("storage failure must not render as unsubscribed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAlertsFeedRequiresVerifiedEmail(t *testing.T) {
	_, router, _, sessions, _, _ := newTestRouter(t)
	sessions.identities["unverified"] = &service.Identity{
		User:    &domain.User{ID: uuid.New()},
		Session: &domain.Session{Token: "unverified"},
	}
	sessions.identities["verified"] = &service.Identity{
		User:    &domain.User{ID: uuid.New(), EmailVerified: true},
		Session: &domain.Session{Token: "verified"},
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/alerts", "", sessionCookie("unverified"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unverified: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Verify your email") {
		t.Fatalf("body: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/alerts", "", sessionCookie("verified"))
	if rec.Code != http.StatusOK {
		t.Fatalf("verified: %d", rec.Code)
	}
}

func TestAdminRoutesNeedAdmin(t *testing.T) {
	_, router, _, sessions, alerts, _ := newTestRouter(t)
	alerts.composed = &domain.Alert{ID: uuid.New(), Subject: "s", Status: domain.AlertDraft}

	sessions.identities["member"] = &service.Identity{
		User:    &domain.User{ID: uuid.New()},
		Session: &domain.Session{Token: "member"},
	}
	sessions.identities["admin"] = &service.Identity{
		User:    &domain.User{ID: uuid.New(), IsAdmin: true},
		Session: &domain.Session{Token: "admin"},
	}

	body := `{"subject":"s","bodyHtml":"b"}`
	rec := doJSON(t, router, http.MethodPost, "/v1/admin/alerts", body, sessionCookie("member"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member: %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/v1/admin/alerts", body, sessionCookie("admin"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin: %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestBroadcastRoute(t *testing.T) {
	_, router, _, sessions, alerts, _ := newTestRouter(t)
	sessions.identities["admin"] = &service.Identity{
		User:    &domain.User{ID: uuid.New(), IsAdmin: true},
		Session: &domain.Session{Token: "admin"},
	}
	alerts.broadcastRes = &dto.BroadcastResult{AlertID: uuid.NewString(), Recipients: 3, Delivered: 3}

	rec := doJSON(t, router, http.MethodPost, "/v1/admin/alerts/"+uuid.NewString()+"/broadcast", "", sessionCookie("admin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/admin/alerts/not-a-uuid/broadcast", "", sessionCookie("admin"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", rec.Code)
	}

	alerts.broadcastErr = impl.ErrAlreadySent
	rec = doJSON(t, router, http.MethodPost, "/v1/admin/alerts/"+uuid.NewString()+"/broadcast", "", sessionCookie("admin"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("resend: %d", rec.Code)
	}
}

func TestUnsubscribeRoute(t *testing.T) {
	_, router, _, _, alerts, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/unsubscribe?token=signed", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "unsubscribed") {
		t.Fatalf("%d %q", rec.Code, rec.Body.String())
	}

	alerts.unsubscribeErr = domain.ErrTokenInvalid
	rec = doJSON(t, router, http.MethodGet, "/v1/unsubscribe?token=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad token: %d", rec.Code)
	}
}

func TestBillingWebhook(t *testing.T) {
	_, router, _, _, _, subs := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/billing/webhook",
		`{"providerRef":"sub_123","userId":"`+uuid.NewString()+`","status":"active"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(subs.applied) != 1 || subs.applied[0].ProviderRef != "sub_123" {
		t.Fatalf("event not applied: %+v", subs.applied)
	}
}

func TestResetRequestAlwaysSucceeds(t *testing.T) {
	_, router, _, _, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/password-reset/request", `{"email":"anything@x.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "If that email is registered") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestClientIPTrustsProxyOnlyWhenConfigured(t *testing.T) {
	h := &Handlers{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:8080"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")

	if ip := h.clientIP(req); ip != "192.0.2.4" {
		t.Fatalf("untrusted proxy: %q", ip)
	}
	h.TrustProxy = true
	if ip := h.clientIP(req); ip != "198.51.100.7" {
		t.Fatalf("trusted proxy: %q", ip)
	}
}
