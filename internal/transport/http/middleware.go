package http

import (
	"context"
	"net/http"

	impl "signalpost/internal/service/impl"

	"signalpost/internal/service"
)

type identityKey struct{}

// RequireSession resolves the session cookie into an Identity and rejects
// the request when neither a valid nor unexpired session exists.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(impl.SessionCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ident, err := h.Sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "something went wrong")
			return
		}
		if ident == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := IdentityFromContext(r.Context())
		if ident == nil || !ident.User.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func IdentityFromContext(ctx context.Context) *service.Identity {
	if v, ok := ctx.Value(identityKey{}).(*service.Identity); ok {
		return v
	}
	return nil
}
