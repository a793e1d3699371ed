// Package identity talks to the external identity provider: redirect-based
// login/logout, code exchange, and silent token retrieval. The provider owns
// credentials and token verification; this client only carries tokens and
// reads unverified claims for display.
package identity

import (
	"context"
	"errors"
)

// ErrNoSession is returned when no provider session exists or a token could
// not be silently obtained. Callers must treat it as "not authenticated for
// this call" and must not retry in a loop.
var ErrNoSession = errors.New("no identity provider session")

// Profile is the subset of ID-token claims the storefront displays.
type Profile struct {
	Subject    string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
}

// Provider abstracts the identity provider for the session manager.
type Provider interface {
	// HasSession reports whether a provider session (token set) is present.
	HasSession() bool
	// LoginURL returns the authorize-redirect URL that begins the login flow.
	LoginURL(state string) string
	// Exchange trades the authorization code from the redirect callback for
	// a token set and stores it.
	Exchange(ctx context.Context, code string) error
	// GetTokenSilently returns a valid access token, refreshing it if needed.
	// It returns ErrNoSession when no token can be obtained.
	GetTokenSilently(ctx context.Context) (string, error)
	// Profile returns the ID-token profile of the current session.
	Profile() (*Profile, error)
	// LogoutURL returns the provider URL that ends the remote session.
	LogoutURL() string
	// ClearSession drops the stored token set.
	ClearSession() error
}
