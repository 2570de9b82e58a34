package service

import (
	"context"
	"net/http"

	"signalpost/internal/dto"
)

// AuthService composes the rate limiter, credential verifier and session
// store into the login, signup and password-reset request gates.
type AuthService interface {
	Signup(ctx context.Context, r dto.SignupRequest, ip, ua string) (*dto.AuthResponse, *http.Cookie, error)
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.AuthResponse, *http.Cookie, error)
	Logout(ctx context.Context, token string) (*http.Cookie, error)

	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID string) error

	RequestPasswordReset(ctx context.Context, email, ip string) dto.ResetRequestResponse
	VerifyResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, r dto.ResetConfirmRequest) error
}
