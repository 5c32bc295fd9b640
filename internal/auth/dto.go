package auth

import "github.com/poliutech/cotizador-backend/internal/users"

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed access token and the account profile.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	User        *users.UserDTO `json:"user"`
}
