package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/utafrali/WebmailGo/pkg/errors"
)

// DefaultBcryptCost is the cost factor used when none is configured.
const DefaultBcryptCost = 10

// PasswordHasher performs one-way hashing and verification of plaintext
// secrets with bcrypt. Hashes are salted, so hashing the same secret twice
// produces different outputs.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given bcrypt cost. Costs
// outside bcrypt's supported range fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash produces a salted bcrypt hash of the secret. An empty secret is
// rejected before any hashing work is done.
func (h *PasswordHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", apperrors.InvalidInput("secret must not be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether the secret matches the stored hash. A malformed or
// corrupt hash simply yields false; callers cannot distinguish it from a
// wrong secret.
func (h *PasswordHasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
