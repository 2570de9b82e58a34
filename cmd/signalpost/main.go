package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"signalpost/internal/config"
	"signalpost/internal/observability/logging"
	"signalpost/internal/observability/metrics"
	"signalpost/internal/observability/middleware"
	"signalpost/internal/service"
	impl "signalpost/internal/service/impl"
	"signalpost/internal/store"
	httpx "signalpost/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "signalpost",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	logger.Info("starting service")
	metrics.MustRegister("signalpost")

	st, err := store.Open(store.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("database open", "error", err)
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := st.Migrate(migrateCtx); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	pw := impl.NewPasswordServiceArgon2id()
	sessions := impl.NewSessionServiceImpl(impl.SessionConfig{
		TTL:    cfg.SessionTTL,
		Secure: cfg.Production(),
	}, st)
	limiter := impl.NewRateLimitServiceImpl(st)

	var mailer service.MailService
	if cfg.SMTPHost != "" {
		mailer = impl.NewSMTPMailService(impl.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
	} else {
		logger.Warn("SMTP_HOST unset, mail is log-only")
		mailer = impl.LogMailService{}
	}

	auth := impl.NewAuthServiceImpl(impl.AuthConfig{
		BaseURL:        cfg.BaseURL,
		VerifyTokenTTL: cfg.VerifyTokenTTL,
		ResetTokenTTL:  cfg.ResetTokenTTL,
	}, st, pw, sessions, limiter, mailer)

	alerts := impl.NewAlertServiceImpl(impl.AlertConfig{
		BaseURL:    cfg.BaseURL,
		SigningKey: []byte(cfg.SigningKey),
	}, st, mailer)

	subs := impl.NewSubscriptionServiceImpl(st)

	mux := httpx.NewRouter(&httpx.Handlers{
		Auth:          auth,
		Sessions:      sessions,
		Alerts:        alerts,
		Subscriptions: subs,
		Store:         st,
		TrustProxy:    cfg.TrustProxy,
	})

	handler := middleware.WithRequestAndTrace(middleware.WithMetrics(mux))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("listening", "addr", srv.Addr, "base_url", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
