package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, username string, roles []string) (string, error)
	Expiration() time.Duration
}

// Login is the use case for exchanging credentials for an access token.
type Login struct {
	users  port.UserStore
	tokens TokenIssuer
}

// NewLogin creates a new Login use case.
func NewLogin(users port.UserStore, tokens TokenIssuer) *Login {
	return &Login{users: users, tokens: tokens}
}

// Execute authenticates the user and issues a bearer token.
func (uc *Login) Execute(ctx context.Context, req dto.LoginRequest) (dto.TokenResponse, error) {
	user, err := uc.users.Authenticate(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	token, err := uc.tokens.GenerateToken(user.ID, user.Username, user.Roles)
	if err != nil {
		return dto.TokenResponse{}, fmt.Errorf("failed to issue token: %w", err)
	}

	return dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(uc.tokens.Expiration().Seconds()),
	}, nil
}

// ErrInvalidUser is returned when a username or password is unacceptable.
var ErrInvalidUser = errors.New("invalid user")

// ManageUsers is the use case behind the admin user endpoints.
type ManageUsers struct {
	users port.UserStore
}

// NewManageUsers creates a new ManageUsers use case.
func NewManageUsers(users port.UserStore) *ManageUsers {
	return &ManageUsers{users: users}
}

// List returns every account.
func (uc *ManageUsers) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]dto.UserResponse, len(users))
	for i, u := range users {
		out[i] = dto.FromUser(u)
	}
	return out, nil
}

// Create adds an account.
func (uc *ManageUsers) Create(ctx context.Context, req dto.CreateUserRequest) (dto.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return dto.UserResponse{}, fmt.Errorf("%w: username and password are required", ErrInvalidUser)
	}
	user, err := uc.users.Add(ctx, username, req.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.FromUser(user), nil
}

// Delete removes an account.
func (uc *ManageUsers) Delete(ctx context.Context, username string) error {
	return uc.users.Remove(ctx, username)
}

// ChangePassword replaces an account password.
func (uc *ManageUsers) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error {
	if req.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidUser)
	}
	return uc.users.ChangePassword(ctx, req.Username, req.Password)
}
