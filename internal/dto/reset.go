package dto

type ResetRequestRequest struct {
	Email string `json:"email"`
}

// ResetRequestResponse is identical in shape whether or not the email is
// registered (anti-enumeration).
type ResetRequestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ResetVerifyRequest struct {
	Token string `json:"token"`
}

type ResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}
