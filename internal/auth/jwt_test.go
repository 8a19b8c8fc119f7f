package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestJWT_GenerateAndValidateAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-123", "john@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestJWT_GenerateAndValidateRefreshToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken("user-123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestJWT_RefreshTokensUniquePerMint(t *testing.T) {
	m := newTestManager()

	// Back-to-back mints land in the same second; the jti claim must still
	// keep the tokens distinct so a newer session never collides with the
	// one it replaces.
	first, err := m.GenerateRefreshToken("user-123")
	require.NoError(t, err)
	second, err := m.GenerateRefreshToken("user-123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	firstClaims, err := m.ValidateRefreshToken(first)
	require.NoError(t, err)
	secondClaims, err := m.ValidateRefreshToken(second)
	require.NoError(t, err)
	assert.NotEmpty(t, firstClaims.ID)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestJWT_AccessTokensUniquePerMint(t *testing.T) {
	m := newTestManager()

	first, err := m.GenerateAccessToken("user-123", "john@example.com")
	require.NoError(t, err)
	second, err := m.GenerateAccessToken("user-123", "john@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestJWT_CrossDomainRejected(t *testing.T) {
	m := newTestManager()

	access, err := m.GenerateAccessToken("user-123", "john@example.com")
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken("user-123")
	require.NoError(t, err)

	// Tokens must not validate in the other trust domain.
	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestJWT_InvalidToken(t *testing.T) {
	m := newTestManager()

	claims, err := m.ValidateAccessToken("invalid-token")
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-1", "refresh-1", 15*time.Minute, time.Hour)
	m2 := NewJWTManager("secret-2", "refresh-2", 15*time.Minute, time.Hour)

	token, err := m1.GenerateAccessToken("user-123", "john@example.com")
	require.NoError(t, err)

	claims, err := m2.ValidateAccessToken(token)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestJWT_ExpiredToken(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	access, err := m.GenerateAccessToken("user-123", "john@example.com")
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken("user-123")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(access)
	assert.Error(t, err)
	_, err = m.ValidateRefreshToken(refresh)
	assert.Error(t, err)
}
