package http

import (
	"net/http"

	"signalpost/internal/domain"
	"signalpost/internal/dto"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handlers) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())
	if !ident.User.EmailVerified {
		writeAuthError(w, domain.ErrEmailNotVerified)
		return
	}
	alerts, err := h.Alerts.ListSent(r.Context(), 50)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handlers) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.Alerts.Unsubscribe(r.Context(), token); err != nil {
		writeAuthError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("You have been unsubscribed."))
}

func (h *Handlers) handleBillingWebhook(w http.ResponseWriter, r *http.Request) {
	var event dto.SubscriptionEvent
	if !decodeJSON(w, r, &event) {
		return
	}
	if err := h.Subscriptions.ApplyEvent(r.Context(), event); err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Received bool `json:"received"`
	}{Received: true})
}

func (h *Handlers) handleComposeAlert(w http.ResponseWriter, r *http.Request) {
	var req dto.ComposeAlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ident := IdentityFromContext(r.Context())
	alert, err := h.Alerts.Compose(r.Context(), req, ident.User.ID)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

func (h *Handlers) handleBroadcastAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	res, err := h.Alerts.Broadcast(r.Context(), id)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
