package dto

import "time"

// AdminLoginRequest carries the admin password.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AuthResponse returns an issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
