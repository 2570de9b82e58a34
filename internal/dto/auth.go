package dto

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	UserID                    string `json:"userId"`
	Email                     string `json:"email"`
	RequiresEmailVerification bool   `json:"requiresEmailVerification,omitempty"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}
