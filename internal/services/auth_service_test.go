package services

import (
	"context"
	"testing"
	"time"

	"client_manager_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) (AuthService, *utils.TokenManager) {
	t.Helper()
	tokens, err := utils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewAuthService(newMemUserRepo(), nil, tokens), tokens
}

func TestLoginUser(t *testing.T) {
	svc, tokens := newTestAuthService(t)
	created, err := svc.EnsureUser(context.Background(), "Admin@Example.com", "admin123")
	require.NoError(t, err)
	require.True(t, created)

	resp, err := svc.LoginUser(context.Background(), LoginRequest{Email: "admin@example.com", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := tokens.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)

	profile, err := svc.GetUserProfile(context.Background(), claims.Subject)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", profile.Email)
	assert.Empty(t, profile.PasswordHash)
}

func TestLoginUser_InvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, err := svc.EnsureUser(context.Background(), "admin@example.com", "admin123")
	require.NoError(t, err)

	_, err = svc.LoginUser(context.Background(), LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.LoginUser(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "admin123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureUser_Idempotent(t *testing.T) {
	svc, _ := newTestAuthService(t)

	created, err := svc.EnsureUser(context.Background(), "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureUser(context.Background(), "ADMIN@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestGetUserProfile_NotFound(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, err := svc.GetUserProfile(context.Background(), "5c1c3c5e-8d0a-4a43-9d6f-3f6f2d0f8f11")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
