package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the identity provider mode for the client.
type AuthMode string

const (
	// AuthModeOIDC uses a real OIDC issuer for identity.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeStatic uses a fixed local identity (development and
	// testing only).
	AuthModeStatic AuthMode = "static"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "static":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, static)", v)
	}
}

// OIDCConfig contains the OIDC identity provider configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// RefreshToken is the durable grant from a prior interactive
	// sign-in.
	RefreshToken string `env:"REFRESH_TOKEN"`
}

// StaticAuthConfig controls the static identity used when
// AUTH_MODE=static.
type StaticAuthConfig struct {
	Email       string `env:"EMAIL"        envDefault:"dev@example.com"`
	DisplayName string `env:"DISPLAY_NAME" envDefault:"Dev User"`
}

// AuthConfig groups all identity-provider configuration.
type AuthConfig struct {
	// Mode determines which identity provider adapter to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// Static configuration (used when Mode=static).
	Static StaticAuthConfig `envPrefix:"STATIC_AUTH_"`
}
