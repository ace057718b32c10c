package models

import "time"

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminUser is the operator identity carried in access tokens.
type AdminUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      AdminUser `json:"user"`
}
