package dto

import "time"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateProfileRequest payload.
type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name"`
	Organization *string `json:"organization"`
}

// SetAdminRequest payload.
type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin"`
}

// UserResponse is the public user projection.
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	IsAdmin      bool      `json:"is_admin"`
	Organization *string   `json:"organization"`
	TicketIDs    []string  `json:"ticket_ids"`
	CreatedAt    time.Time `json:"created_at"`
}
