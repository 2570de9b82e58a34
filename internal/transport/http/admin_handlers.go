package http

import (
	"errors"
	"net/http"

	"signalpost/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type subscriberView struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	EmailVerified bool   `json:"emailVerified"`
	Subscription  string `json:"subscription,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

func (h *Handlers) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.Users().List(r.Context())
	if err != nil {
		writeAuthError(w, err)
		return
	}

	out := make([]subscriberView, 0, len(users))
	for _, u := range users {
		status := ""
		if sub, err := h.Store.Subscriptions().GetByUserID(r.Context(), u.ID); err == nil {
			status = sub.Status
		} else if !errors.Is(err, store.ErrRecordNotFound) {
			writeAuthError(w, err)
			return
		}
		out = append(out, subscriberView{
			UserID:        u.ID.String(),
			Email:         u.Email,
			FirstName:     u.FirstName,
			LastName:      u.LastName,
			EmailVerified: u.EmailVerified,
			Subscription:  status,
			CreatedAt:     u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDeleteUser removes the account and everything owned by it: sessions,
// subscription, and outstanding tokens.
func (h *Handlers) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if _, err := h.Store.Users().GetByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "no such user")
			return
		}
		writeAuthError(w, err)
		return
	}

	deleted, err := h.Store.DeleteUserData(r.Context(), id)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Deleted map[string]int64 `json:"deleted"`
	}{Deleted: deleted})
}
