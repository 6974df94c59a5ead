package auth

import (
	"github.com/webqianduansong/shn-jade-backend/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoints.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the customer signup payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Locale   string `json:"locale" validate:"omitempty,oneof=en zh"`
}

// LoginResponse carries the token pair and the authenticated user.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// TokenPair is returned by the refresh endpoint.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest rotates a refresh token tied to a possibly expired access
// token. AccessToken may be omitted when the session cookie carries it.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"omitempty"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}
