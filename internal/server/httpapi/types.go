package httpapi

import "time"

type storeCredentialsRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Hint     string `json:"hint"`
}

type credentialsResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Hint     string `json:"hint,omitempty"`
}

type initiateResetRequest struct {
	UserID string `json:"user_id"`
}

type initiateResetResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type completeResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type biometricsRequest struct {
	// Template is the base64-encoded enrollment template.
	Template string `json:"template"`
}

type verifyBiometricsResponse struct {
	Match bool `json:"match"`
}

type messageResponse struct {
	Message string `json:"message"`
}
