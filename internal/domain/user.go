package domain

import (
	"time"
)

// User represents a registered identity in the webmail system.
//
// Either PasswordHash or GoogleID is always present: an account is created
// through local registration, through Google sign-in, or both (a local
// account later linked to its Google identity).
//
// RefreshTokenHash is the single active-session slot. A non-nil value is the
// bcrypt hash of the one currently valid refresh token; nil means no active
// session. Each successful login overwrites the slot, invalidating any
// previously issued refresh token.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     *string   `json:"-"`
	GoogleID         *string   `json:"google_id,omitempty"`
	RefreshTokenHash *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasPassword reports whether the user can authenticate with a local password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// HasActiveSession reports whether the user has an outstanding refresh token.
func (u *User) HasActiveSession() bool {
	return u.RefreshTokenHash != nil && *u.RefreshTokenHash != ""
}

// TokenPair holds an access and refresh token issued together at login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
