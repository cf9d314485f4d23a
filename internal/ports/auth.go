// Package ports defines interfaces (hexagonal ports) for the session
// core. Implementations live in internal/adapters; orchestration in
// internal/service.
package ports

import (
	"context"
	"time"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
)

// SessionStore persists the fixed set of session attributes with
// explicit expiry. It is process-wide state: only the reconciler and
// the backend gateway may write to it; every other component treats it
// as read-only.
type SessionStore interface {
	// Set stores one attribute with a medium-level expiry derived from
	// ttl. The stored expiry attribute is still re-validated against
	// wall-clock time on read, independent of the medium's own expiry.
	Set(ctx context.Context, key domainauth.SessionKey, value string, ttl time.Duration) error

	// Get retrieves one attribute. The second return is false when the
	// key is absent or the medium considers it expired.
	Get(ctx context.Context, key domainauth.SessionKey) (string, bool, error)

	// Clear removes all session attributes atomically with respect to
	// readers: no reader may observe some keys cleared and others not.
	Clear(ctx context.Context) error
}

// PrincipalListener receives identity-provider state changes. A nil
// principal means the provider reports no signed-in user.
type PrincipalListener func(p *domainauth.Principal)

// IdentityProvider is the black-box capability consumed from the
// third-party identity provider. Token issuance and the interactive
// sign-in flow are the provider's own concern.
type IdentityProvider interface {
	// CurrentPrincipal synchronously reports the currently signed-in
	// principal, if one is available without any network round trip.
	CurrentPrincipal() (domainauth.Principal, bool)

	// OnPrincipalChange registers a long-lived listener for state
	// changes and returns its unsubscribe handle. The listener may fire
	// at any time after registration, including for asynchronous
	// background sign-outs.
	OnPrincipalChange(fn PrincipalListener) (unsubscribe func())

	// FreshToken obtains an identity token for the given principal.
	// With forceRefresh the provider must mint a new token rather than
	// reuse a cached one, proving current liveness.
	FreshToken(ctx context.Context, p domainauth.Principal, forceRefresh bool) (string, error)

	// SignOut terminates the provider-side session and notifies
	// listeners with a nil principal.
	SignOut(ctx context.Context) error
}

// Navigator performs the hard navigation to the login entry point when
// the backend signals that re-authentication is required.
type Navigator interface {
	ToLogin(ctx context.Context)
}
