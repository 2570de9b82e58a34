package http

import (
	"net/http"
	"strings"
	"time"

	"signalpost/internal/netutil"
	"signalpost/internal/service"
	"signalpost/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth          service.AuthService
	Sessions      service.SessionService
	Alerts        service.AlertService
	Subscriptions service.SubscriptionService
	Store         *store.Store

	TrustProxy bool
}

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Coarse per-IP guard in front of everything; the DB-backed limiter
	// does the per-account accounting.
	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.handleSignup)
			r.Post("/login", h.handleLogin)
			r.Post("/logout", h.handleLogout)
			r.Post("/verify-email", h.handleVerifyEmail)
			r.Post("/password-reset/request", h.handleResetRequest)
			r.Post("/password-reset/verify", h.handleResetVerify)
			r.Post("/password-reset/confirm", h.handleResetConfirm)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireSession)
				r.Get("/me", h.handleMe)
				r.Post("/resend-verification", h.handleResendVerification)
			})
		})

		r.Get("/unsubscribe", h.handleUnsubscribe)
		r.Post("/billing/webhook", h.handleBillingWebhook)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Get("/alerts", h.handleListAlerts)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireSession, h.RequireAdmin)
			r.Post("/alerts", h.handleComposeAlert)
			r.Post("/alerts/{id}/broadcast", h.handleBroadcastAlert)
			r.Get("/subscribers", h.handleListSubscribers)
			r.Delete("/users/{id}", h.handleDeleteUser)
		})
	})

	return r
}

// clientIP resolves the caller address, honoring proxy headers only when the
// deployment says a trusted proxy sits in front.
func (h *Handlers) clientIP(r *http.Request) string {
	if h.TrustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// XFF can be a list: client, proxy1, proxy2...
			ip := strings.TrimSpace(strings.Split(xff, ",")[0])
			if normalized, ok := netutil.NormalizeIP(ip); ok {
				return normalized
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			if normalized, ok := netutil.NormalizeIP(xr); ok {
				return normalized
			}
		}
	}
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}
