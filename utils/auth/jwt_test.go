package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        expiry,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "learnhub-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	token, jti, err := manager.GenerateAccessToken(7, "student@example.com", "student", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "student@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	manager := newTestManager(time.Hour)
	other := NewJWTManager(JWTConfig{Secret: "different", Expiry: time.Hour, Issuer: "learnhub-test"})

	token, _, err := manager.GenerateAccessToken(1, "a@example.com", "student", 0)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	manager := newTestManager(-time.Minute)

	token, _, err := manager.GenerateAccessToken(1, "a@example.com", "student", 0)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshAccessTokenRequiresRefreshType(t *testing.T) {
	manager := newTestManager(time.Hour)

	access, _, err := manager.GenerateAccessToken(1, "a@example.com", "student", 0)
	require.NoError(t, err)

	_, _, err = manager.RefreshAccessToken(access, 0)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, _, err := manager.GenerateRefreshToken(1, "a@example.com", "student", 0)
	require.NoError(t, err)

	newAccess, _, err := manager.RefreshAccessToken(refresh, 0)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
}

func TestGetTokenExpiry(t *testing.T) {
	manager := newTestManager(time.Hour)

	token, _, err := manager.GenerateAccessToken(1, "a@example.com", "student", 0)
	require.NoError(t, err)

	expiry, err := manager.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, time.Minute)
}
