package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"signalpost/internal/domain"
	"signalpost/internal/dto"
	"signalpost/internal/observability/metrics"
	"signalpost/internal/service"
	"signalpost/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AlertConfig struct {
	BaseURL        string
	SigningKey     []byte        // HS256 secret for unsubscribe links
	UnsubscribeTTL time.Duration // default 30 days
}

type alertStore interface {
	Create(ctx context.Context, a *domain.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	ListSent(ctx context.Context, limit int) ([]domain.Alert, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

type subscriberStore interface {
	ListActive(ctx context.Context) ([]domain.User, error)
	Upsert(ctx context.Context, sub *domain.Subscription) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error)
}

type AlertServiceImpl struct {
	cfg    AlertConfig
	alerts alertStore
	subs   subscriberStore
	mail   service.MailService
	now    func() time.Time
}

func NewAlertServiceImpl(cfg AlertConfig, st *store.Store, mailer service.MailService) *AlertServiceImpl {
	if cfg.UnsubscribeTTL <= 0 {
		cfg.UnsubscribeTTL = 30 * 24 * time.Hour
	}
	return &AlertServiceImpl{
		cfg:    cfg,
		alerts: st.Alerts(),
		subs:   st.Subscriptions(),
		mail:   mailer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *AlertServiceImpl) Compose(ctx context.Context, r dto.ComposeAlertRequest, createdBy domain.UserID) (*domain.Alert, error) {
	if r.Subject == "" {
		return nil, ErrEmptySubject
	}
	if r.BodyHTML == "" {
		return nil, ErrEmptyBody
	}
	a := &domain.Alert{
		ID:        uuid.New(),
		Subject:   r.Subject,
		BodyHTML:  r.BodyHTML,
		Status:    domain.AlertDraft,
		CreatedBy: createdBy,
		CreatedAt: s.now(),
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Broadcast delivers a draft to every active subscriber. A per-recipient
// failure is logged and counted but does not stop the run.
func (s *AlertServiceImpl) Broadcast(ctx context.Context, alertID domain.AlertID) (*dto.BroadcastResult, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert.Status != domain.AlertDraft {
		return nil, ErrAlreadySent
	}

	recipients, err := s.subs.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.BroadcastResult{AlertID: alert.ID.String(), Recipients: len(recipients)}
	for _, u := range recipients {
		body, err := s.bodyFor(alert, u.ID)
		if err != nil {
			res.Failed++
			slog.Error("unsubscribe link signing failed", "alert_id", alert.ID, "user_id", u.ID, "error", err)
			continue
		}
		if err := s.mail.Send(ctx, u.Email, alert.Subject, body); err != nil {
			res.Failed++
			metrics.AlertsBroadcastTotal.WithLabelValues("failure").Inc()
			slog.Error("alert delivery failed", "alert_id", alert.ID, "user_id", u.ID, "error", err)
			continue
		}
		res.Delivered++
		metrics.AlertsBroadcastTotal.WithLabelValues("success").Inc()
	}

	if err := s.alerts.MarkSent(ctx, alert.ID, s.now()); err != nil {
		return res, err
	}
	slog.Info("alert broadcast", "alert_id", alert.ID, "recipients", res.Recipients, "delivered", res.Delivered, "failed", res.Failed)
	return res, nil
}

func (s *AlertServiceImpl) bodyFor(alert *domain.Alert, userID domain.UserID) (string, error) {
	token, err := s.signUnsubscribe(userID)
	if err != nil {
		return "", err
	}
	link := fmt.Sprintf("%s/v1/unsubscribe?token=%s", s.cfg.BaseURL, token)
	return alert.BodyHTML + fmt.Sprintf("<p><a href=%q>Unsubscribe</a></p>", link), nil
}

func (s *AlertServiceImpl) ListSent(ctx context.Context, limit int) ([]domain.Alert, error) {
	return s.alerts.ListSent(ctx, limit)
}

// Unsubscribe redeems a signed link token and cancels the subscription.
func (s *AlertServiceImpl) Unsubscribe(ctx context.Context, token string) error {
	userID, err := s.parseUnsubscribe(token)
	if err != nil {
		return domain.ErrTokenInvalid
	}
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrTokenInvalid
		}
		return err
	}
	sub.Status = domain.SubscriptionCancelled
	return s.subs.Upsert(ctx, sub)
}

// ====== Unsubscribe link tokens ======

type unsubscribeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s *AlertServiceImpl) signUnsubscribe(userID domain.UserID) (string, error) {
	now := s.now()
	claims := unsubscribeClaims{
		Purpose: "unsubscribe",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.UnsubscribeTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.SigningKey)
}

func (s *AlertServiceImpl) parseUnsubscribe(tokenStr string) (domain.UserID, error) {
	claims := &unsubscribeClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	if claims.Purpose != "unsubscribe" {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	return uuid.Parse(claims.Subject)
}
