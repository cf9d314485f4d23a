// Package oidc implements the IdentityProvider port over OIDC/OAuth2.
// The interactive sign-in happens elsewhere (browser or device flow);
// this adapter holds the resulting refresh-token grant and turns it
// into fresh identity tokens on demand.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
	"github.com/college-predictor/prompt-manager-fe/internal/ports"
)

var _ ports.IdentityProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string
	// RefreshToken is the durable grant obtained from a prior
	// interactive sign-in.
	RefreshToken string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
	Logger       *slog.Logger // Optional, defaults to slog.Default
}

// Provider implements ports.IdentityProvider using a refresh-token
// grant against a discovered OIDC issuer.
type Provider struct {
	config     *oauth2.Config
	verifier   *gooidc.IDTokenVerifier
	httpClient *http.Client
	logger     *slog.Logger

	mu           sync.Mutex
	token        *oauth2.Token
	rawIDToken   string
	principal    *domainauth.Principal
	listeners    map[int]ports.PrincipalListener
	nextListener int
}

// NewProvider creates a new OIDC provider. It performs a single
// discovery fetch against the issuer.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if cfg.RefreshToken == "" {
		return nil, errors.New("refresh token is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	discoveryCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(discoveryCtx, issuerFromDiscoveryURL(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	p := &Provider{
		httpClient: httpClient,
		logger:     logger,
		verifier:   op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		listeners:  make(map[int]ports.PrincipalListener),
		token:      &oauth2.Token{RefreshToken: cfg.RefreshToken},
	}
	p.config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       strings.Fields(cfg.Scope),
		Endpoint:     op.Endpoint(),
	}
	return p, nil
}

// SignIn redeems the refresh-token grant, resolves the principal from
// the ID token claims, and notifies listeners. It must be called before
// the principal is observable via CurrentPrincipal.
func (p *Provider) SignIn(ctx context.Context) error {
	principal, _, err := p.refresh(ctx, false)
	if err != nil {
		return fmt.Errorf("oidc sign in: %w", err)
	}
	p.notify(&principal)
	return nil
}

func (p *Provider) CurrentPrincipal() (domainauth.Principal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.principal == nil {
		return domainauth.Principal{}, false
	}
	return *p.principal, true
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

// FreshToken returns an identity token for the signed-in principal.
// With forceRefresh the cached access/ID token pair is discarded first,
// so a returned token always proves a live grant.
func (p *Provider) FreshToken(ctx context.Context, _ domainauth.Principal, forceRefresh bool) (string, error) {
	_, rawIDToken, err := p.refresh(ctx, forceRefresh)
	if err != nil {
		return "", err
	}
	return rawIDToken, nil
}

// SignOut discards the local grant and notifies listeners with a nil
// principal. The issuer-side session is the provider's own concern.
func (p *Provider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.token = nil
	p.rawIDToken = ""
	p.principal = nil
	p.mu.Unlock()

	p.notify(nil)
	return nil
}

// refresh ensures a valid token pair, minting a new one when forced or
// when the cached one is no longer valid. A refresh failure after a
// successful sign-in is a background sign-out signal: the principal is
// dropped and listeners are notified with nil.
func (p *Provider) refresh(ctx context.Context, force bool) (domainauth.Principal, string, error) {
	p.mu.Lock()
	cur := p.token
	cached := p.rawIDToken
	curPrincipal := p.principal
	p.mu.Unlock()

	if cur == nil || cur.RefreshToken == "" {
		return domainauth.Principal{}, "", errors.New("oidc: no grant available, sign in first")
	}
	if !force && cur.Valid() && cached != "" && curPrincipal != nil {
		return *curPrincipal, cached, nil
	}

	seed := cur
	if force {
		// A seed without an access token makes the token source hit the
		// token endpoint instead of reusing the cached token.
		seed = &oauth2.Token{RefreshToken: cur.RefreshToken}
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.TokenSource(tokenCtx, seed).Token()
	if err != nil {
		p.handleRefreshFailure(err)
		return domainauth.Principal{}, "", fmt.Errorf("refresh token grant: %w", err)
	}

	rawIDToken, principal, err := p.resolveIdentity(ctx, tok)
	if err != nil {
		return domainauth.Principal{}, "", err
	}

	p.mu.Lock()
	p.token = tok
	p.rawIDToken = rawIDToken
	p.principal = &principal
	p.mu.Unlock()

	return principal, rawIDToken, nil
}

// handleRefreshFailure drops the principal when a previously signed-in
// grant stops refreshing, and tells listeners about the sign-out.
func (p *Provider) handleRefreshFailure(err error) {
	p.mu.Lock()
	hadPrincipal := p.principal != nil
	p.principal = nil
	p.rawIDToken = ""
	p.mu.Unlock()

	if hadPrincipal {
		p.logger.Warn("identity token refresh failed, signing out", "error", err)
		p.notify(nil)
	}
}

// idTokenClaims is the subset of standard OIDC claims this client uses.
type idTokenClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

func (p *Provider) resolveIdentity(ctx context.Context, tok *oauth2.Token) (string, domainauth.Principal, error) {
	rawIDToken, err := idTokenFromToken(tok)
	if err != nil {
		return "", domainauth.Principal{}, err
	}
	idTok, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", domainauth.Principal{}, fmt.Errorf("verify id_token: %w", err)
	}
	var claims idTokenClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return "", domainauth.Principal{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if claims.Email == "" {
		return "", domainauth.Principal{}, errors.New("id_token carries no email claim")
	}
	return rawIDToken, principalFromClaims(claims, p), nil
}

// issuerFromDiscoveryURL accepts either the bare issuer URL or the full
// discovery document URL and returns the issuer.
func issuerFromDiscoveryURL(u string) string {
	issuer := strings.TrimSuffix(u, "/")
	return strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
}

// principalFromClaims maps ID token claims into a Principal.
func principalFromClaims(c idTokenClaims, handle any) domainauth.Principal {
	display := c.Name
	if display == "" {
		display = strings.TrimSpace(c.GivenName + " " + c.FamilyName)
	}
	if display == "" {
		display = c.Email
	}
	return domainauth.Principal{
		Email:       c.Email,
		DisplayName: display,
		Handle:      handle,
	}
}

// idTokenFromToken extracts the raw id_token from a token response.
func idTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", errors.New("missing id_token in token response")
	}
	return raw, nil
}

// notify invokes listeners outside the provider lock so listeners may
// call back into the provider.
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
