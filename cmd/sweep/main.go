package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"signalpost/internal/config"
	"signalpost/internal/observability/logging"
	impl "signalpost/internal/service/impl"
	"signalpost/internal/store"
)

// One-shot retention pass, meant to be run from cron or a systemd timer:
// rate-limit attempts older than 24h, expired sessions, and dead tokens.
// Request handling never depends on this having run.
func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "signalpost-sweep",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	st, err := store.Open(store.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("database open", "error", err)
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now().UTC()

	attempts, err := impl.NewRateLimitServiceImpl(st).Sweep(ctx, 24*time.Hour)
	if err != nil {
		logger.Error("rate limit sweep", "error", err)
		os.Exit(1)
	}

	sessions, err := st.Sessions().DeleteExpired(ctx, now)
	if err != nil {
		logger.Error("session sweep", "error", err)
		os.Exit(1)
	}

	resetTokens, err := st.ResetTokens().DeleteExpired(ctx, now)
	if err != nil {
		logger.Error("reset token sweep", "error", err)
		os.Exit(1)
	}

	verifyTokens, err := st.VerificationTokens().DeleteExpired(ctx, now)
	if err != nil {
		logger.Error("verification token sweep", "error", err)
		os.Exit(1)
	}

	logger.Info("sweep complete",
		"rate_limit_attempts", attempts,
		"sessions", sessions,
		"reset_tokens", resetTokens,
		"verification_tokens", verifyTokens,
	)
}
