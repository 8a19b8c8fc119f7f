package provider

import (
	"context"
)

// Identity is the normalized assertion returned by an external identity
// provider after a successful code exchange. It carries identity facts only;
// account lookup, linking, and session issue happen in the service layer.
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          string
	EmailVerified  bool
}

// OAuthProvider defines the contract for an external auth provider.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google").
	Name() string

	// AuthCodeURL returns the provider's authorization URL for the given
	// anti-forgery state.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for provider credentials and
	// returns the verified identity.
	Exchange(ctx context.Context, code string) (*Identity, error)
}
