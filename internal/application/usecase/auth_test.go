package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/application/usecase"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
)

type mockUserStore struct {
	users map[string]string
}

func (m *mockUserStore) Authenticate(_ context.Context, username, password string) (model.User, error) {
	if pw, ok := m.users[username]; ok && pw == password {
		return model.User{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(username)), Username: username, Roles: []string{"analyst"}}, nil
	}
	return model.User{}, errors.New("no match")
}

func (m *mockUserStore) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(m.users))
	for name := range m.users {
		out = append(out, model.User{Username: name})
	}
	return out, nil
}

func (m *mockUserStore) Add(_ context.Context, username, password string) (model.User, error) {
	if _, ok := m.users[username]; ok {
		return model.User{}, port.ErrAlreadyExists
	}
	m.users[username] = password
	return model.User{Username: username}, nil
}

func (m *mockUserStore) Remove(_ context.Context, username string) error {
	if _, ok := m.users[username]; !ok {
		return port.ErrNotFound
	}
	delete(m.users, username)
	return nil
}

func (m *mockUserStore) ChangePassword(_ context.Context, username, password string) error {
	if _, ok := m.users[username]; !ok {
		return port.ErrNotFound
	}
	m.users[username] = password
	return nil
}

type mockTokenIssuer struct {
	err error
}

func (m mockTokenIssuer) GenerateToken(_ uuid.UUID, username string, _ []string) (string, error) {
	return "token-for-" + username, m.err
}

func (m mockTokenIssuer) Expiration() time.Duration { return time.Hour }

func TestLogin_Execute(t *testing.T) {
	store := &mockUserStore{users: map[string]string{"demo": "demo123"}}

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := usecase.NewLogin(store, mockTokenIssuer{}).Execute(context.Background(),
			dto.LoginRequest{Username: " demo ", Password: "demo123"})
		require.NoError(t, err)
		assert.Equal(t, "token-for-demo", resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, 3600, resp.ExpiresIn)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := usecase.NewLogin(store, mockTokenIssuer{}).Execute(context.Background(),
			dto.LoginRequest{Username: "demo", Password: "nope"})
		assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
	})

	t.Run("signing failure", func(t *testing.T) {
		_, err := usecase.NewLogin(store, mockTokenIssuer{err: errors.New("no key")}).Execute(context.Background(),
			dto.LoginRequest{Username: "demo", Password: "demo123"})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, usecase.ErrInvalidCredentials)
	})
}

func TestManageUsers(t *testing.T) {
	store := &mockUserStore{users: map[string]string{"admin": "churn123"}}
	uc := usecase.NewManageUsers(store)
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateUserRequest{Username: "analyst", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "analyst", created.Username)

	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "analyst", Password: "secret"})
	assert.ErrorIs(t, err, port.ErrAlreadyExists)

	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: " ", Password: "secret"})
	assert.ErrorIs(t, err, usecase.ErrInvalidUser)

	require.NoError(t, uc.ChangePassword(ctx, dto.ChangePasswordRequest{Username: "analyst", Password: "new"}))
	assert.Equal(t, "new", store.users["analyst"])
	assert.ErrorIs(t, uc.ChangePassword(ctx, dto.ChangePasswordRequest{Username: "analyst"}), usecase.ErrInvalidUser)

	users, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, uc.Delete(ctx, "analyst"))
	assert.ErrorIs(t, uc.Delete(ctx, "analyst"), port.ErrNotFound)
}
