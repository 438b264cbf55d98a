package dto

import (
	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
)

// LoginRequest carries user credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// CreateUserRequest adds an account.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest replaces an account password.
type ChangePasswordRequest struct {
	Username string `json:"-"`
	Password string `json:"password"`
}

// UserResponse describes an account without its credentials.
type UserResponse struct {
	Username string    `json:"username"`
	Roles    []string  `json:"roles"`
	ID       uuid.UUID `json:"id"`
}

// FromUser converts a domain User to its response form.
func FromUser(u model.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Roles: u.Roles}
}
