// Package staticauth provides a config-driven IdentityProvider for
// local development and tests. Sign-in is a local state flip; tokens
// are deterministic and carry no cryptographic meaning.
package staticauth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
	"github.com/college-predictor/prompt-manager-fe/internal/ports"
)

var _ ports.IdentityProvider = (*Provider)(nil)

// Config controls the static provider identity.
type Config struct {
	Email       string
	DisplayName string
	// TokenPrefix prefixes minted tokens; defaults to "static-token".
	TokenPrefix string
}

// Provider implements ports.IdentityProvider with a fixed identity.
type Provider struct {
	tokenPrefix string

	mu           sync.Mutex
	identity     domainauth.Principal
	signedIn     bool
	tokenCount   int
	listeners    map[int]ports.PrincipalListener
	nextListener int
}

// NewProvider constructs a static provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("static auth: Email is required")
	}
	if cfg.DisplayName == "" {
		return nil, errors.New("static auth: DisplayName is required")
	}
	prefix := cfg.TokenPrefix
	if prefix == "" {
		prefix = "static-token"
	}
	p := &Provider{
		tokenPrefix: prefix,
		listeners:   make(map[int]ports.PrincipalListener),
	}
	p.identity = domainauth.Principal{
		Email:       cfg.Email,
		DisplayName: cfg.DisplayName,
		Handle:      p,
	}
	return p, nil
}

// SignIn marks the identity as signed in and notifies listeners.
func (p *Provider) SignIn() {
	p.mu.Lock()
	p.signedIn = true
	principal := p.identity
	p.mu.Unlock()

	p.notify(&principal)
}

// SignOut marks the identity as signed out and notifies listeners with
// a nil principal.
func (p *Provider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.signedIn = false
	p.mu.Unlock()

	p.notify(nil)
	return nil
}

func (p *Provider) CurrentPrincipal() (domainauth.Principal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.signedIn {
		return domainauth.Principal{}, false
	}
	return p.identity, true
}

func (p *Provider) OnPrincipalChange(fn ports.PrincipalListener) func() {
	p.mu.Lock()
	id := p.nextListener
	p.nextListener++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// FreshToken mints a deterministic token. Each forced refresh yields a
// new token value, mirroring real providers proving liveness.
func (p *Provider) FreshToken(_ context.Context, _ domainauth.Principal, forceRefresh bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.signedIn {
		return "", errors.New("static auth: no signed-in principal")
	}
	if forceRefresh || p.tokenCount == 0 {
		p.tokenCount++
	}
	return fmt.Sprintf("%s-%d", p.tokenPrefix, p.tokenCount), nil
}

// notify invokes listeners outside the provider lock. Listeners are
// allowed to call back into the provider (the reconciler signs out from
// within its own listener on exchange failure).
func (p *Provider) notify(principal *domainauth.Principal) {
	p.mu.Lock()
	fns := make([]ports.PrincipalListener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(principal)
	}
}
