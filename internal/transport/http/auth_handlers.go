package http

import (
	"errors"
	"net/http"

	"signalpost/internal/domain"
	"signalpost/internal/dto"
	impl "signalpost/internal/service/impl"
)

func (h *Handlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, cookie, err := h.Auth.Signup(r.Context(), req, h.clientIP(r), r.UserAgent())
	if err != nil {
		writeAuthError(w, err)
		return
	}
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, cookie, err := h.Auth.Login(r.Context(), req, h.clientIP(r), r.UserAgent())
	if err != nil {
		writeAuthError(w, err)
		return
	}
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(impl.SessionCookieName); err == nil {
		token = c.Value
	}
	cookie, err := h.Auth.Logout(r.Context(), token)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	http.SetCookie(w, cookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())
	status, err := h.Subscriptions.StatusFor(r.Context(), ident.User.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotSubscribed) {
			writeAuthError(w, err)
			return
		}
		status = "" // no subscription renders as an empty field
	}
	writeJSON(w, http.StatusOK, struct {
		UserID        string `json:"userId"`
		Email         string `json:"email"`
		FirstName     string `json:"firstName"`
		LastName      string `json:"lastName"`
		EmailVerified bool   `json:"emailVerified"`
		Subscription  string `json:"subscription,omitempty"`
	}{
		UserID:        ident.User.ID.String(),
		Email:         ident.User.Email,
		FirstName:     ident.User.FirstName,
		LastName:      ident.User.LastName,
		EmailVerified: ident.User.EmailVerified,
		Subscription:  status,
	})
}

func (h *Handlers) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Auth.VerifyEmail(r.Context(), req.Token); err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Verified bool `json:"verified"`
	}{Verified: true})
}

func (h *Handlers) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	ident := IdentityFromContext(r.Context())
	if err := h.Auth.ResendVerification(r.Context(), ident.User.ID.String()); err != nil {
		writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.Auth.RequestPasswordReset(r.Context(), req.Email, h.clientIP(r))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) handleResetVerify(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Auth.VerifyResetToken(r.Context(), req.Token); err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Valid bool `json:"valid"`
	}{Valid: true})
}

func (h *Handlers) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Auth.ResetPassword(r.Context(), req); err != nil {
		writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Reset bool `json:"reset"`
	}{Reset: true})
}
