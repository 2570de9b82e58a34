package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"signalpost/internal/domain"
	impl "signalpost/internal/service/impl"
	"signalpost/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeAuthError maps the error taxonomy to statuses and user-facing
// messages. Credential failures stay generic on purpose.
func writeAuthError(w http.ResponseWriter, err error) {
	var rl *domain.RateLimitedError
	if errors.As(err, &rl) {
		wait := rl.RetryAfter(time.Now().UTC())
		writeError(w, http.StatusTooManyRequests,
			fmt.Sprintf("Too many attempts. Try again in %d minutes.", int(wait.Minutes())))
		return
	}

	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, impl.ErrAlreadySent):
		writeError(w, http.StatusConflict, "This alert has already been broadcast.")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, domain.ErrEmailNotVerified):
		writeError(w, http.StatusForbidden, "Verify your email address first.")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "An account with that email already exists.")
	case errors.Is(err, domain.ErrTokenUsed):
		writeError(w, http.StatusBadRequest, "This link has already been used.")
	case errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusBadRequest, "This link is invalid or has expired.")
	case errors.Is(err, impl.ErrEmptyEmail),
		errors.Is(err, impl.ErrInvalidEmail),
		errors.Is(err, impl.ErrEmptyPassword),
		errors.Is(err, impl.ErrPasswordLength),
		errors.Is(err, impl.ErrPasswordWeak),
		errors.Is(err, impl.ErrEmptyField),
		errors.Is(err, impl.ErrUnknownStatus),
		errors.Is(err, impl.ErrEmptySubject),
		errors.Is(err, impl.ErrEmptyBody):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return false
	}
	return true
}
