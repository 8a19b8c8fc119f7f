package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

// ============================================================================
// User Struct Tests
// ============================================================================

func TestUser_HashesExcludedFromJSON(t *testing.T) {
	u := User{
		ID:               "user-1",
		Email:            "test@example.com",
		PasswordHash:     strPtr("$2a$10$secret"),
		RefreshTokenHash: strPtr("$2a$10$refresh"),
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "refresh")
	assert.NotContains(t, string(data), "password_hash")
	assert.NotContains(t, string(data), "refresh_token_hash")
	assert.Contains(t, string(data), `"email":"test@example.com"`)
}

func TestUser_GoogleIDOmittedWhenAbsent(t *testing.T) {
	u := User{ID: "user-1", Email: "test@example.com"}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "google_id")

	u.GoogleID = strPtr("google-sub-1")
	data, err = json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"google_id":"google-sub-1"`)
}

func TestUser_HasPassword(t *testing.T) {
	assert.False(t, (&User{}).HasPassword())
	assert.False(t, (&User{PasswordHash: strPtr("")}).HasPassword())
	assert.True(t, (&User{PasswordHash: strPtr("$2a$10$hash")}).HasPassword())
}

func TestUser_HasActiveSession(t *testing.T) {
	assert.False(t, (&User{}).HasActiveSession())
	assert.False(t, (&User{RefreshTokenHash: strPtr("")}).HasActiveSession())
	assert.True(t, (&User{RefreshTokenHash: strPtr("$2a$10$hash")}).HasActiveSession())
}

// ============================================================================
// TokenPair Tests
// ============================================================================

func TestTokenPair_Fields(t *testing.T) {
	tp := TokenPair{AccessToken: "access-123", RefreshToken: "refresh-456"}
	assert.Equal(t, "access-123", tp.AccessToken)
	assert.Equal(t, "refresh-456", tp.RefreshToken)
}
