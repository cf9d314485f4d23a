package oidc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewProvider_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, ProviderConfig{
		DiscoveryURL: "https://issuer.example.com",
		RefreshToken: "rt",
	})
	require.Error(t, err, "client ID is required")

	_, err = NewProvider(ctx, ProviderConfig{
		ClientID:     "client",
		RefreshToken: "rt",
	})
	require.Error(t, err, "discovery URL is required")

	_, err = NewProvider(ctx, ProviderConfig{
		ClientID:     "client",
		DiscoveryURL: "https://issuer.example.com",
	})
	require.Error(t, err, "refresh token is required")
}

func TestIssuerFromDiscoveryURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://issuer.example.com", "https://issuer.example.com"},
		{"https://issuer.example.com/", "https://issuer.example.com"},
		{"https://issuer.example.com/.well-known/openid-configuration", "https://issuer.example.com"},
		{"https://issuer.example.com/realms/dev/.well-known/openid-configuration", "https://issuer.example.com/realms/dev"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, issuerFromDiscoveryURL(tt.in))
	}
}

func TestPrincipalFromClaims_DisplayNameFallbacks(t *testing.T) {
	t.Run("name claim wins", func(t *testing.T) {
		p := principalFromClaims(idTokenClaims{
			Email:      "alice@example.com",
			Name:       "Alice L",
			GivenName:  "Alice",
			FamilyName: "Liddell",
		}, nil)
		assert.Equal(t, "Alice L", p.DisplayName)
	})

	t.Run("given and family names compose", func(t *testing.T) {
		p := principalFromClaims(idTokenClaims{
			Email:      "alice@example.com",
			GivenName:  "Alice",
			FamilyName: "Liddell",
		}, nil)
		assert.Equal(t, "Alice Liddell", p.DisplayName)
	})

	t.Run("given name alone", func(t *testing.T) {
		p := principalFromClaims(idTokenClaims{
			Email:     "alice@example.com",
			GivenName: "Alice",
		}, nil)
		assert.Equal(t, "Alice", p.DisplayName)
	})

	t.Run("email is the last resort", func(t *testing.T) {
		p := principalFromClaims(idTokenClaims{Email: "alice@example.com"}, nil)
		assert.Equal(t, "alice@example.com", p.DisplayName)
	})
}

func TestPrincipalFromClaims_CarriesHandle(t *testing.T) {
	handle := struct{ tag string }{"live"}
	p := principalFromClaims(idTokenClaims{Email: "a@b.c"}, handle)
	assert.Equal(t, handle, p.Handle)
}

func TestIDTokenFromToken(t *testing.T) {
	_, err := idTokenFromToken(nil)
	require.Error(t, err)

	_, err = idTokenFromToken(&oauth2.Token{})
	require.Error(t, err, "token response without id_token")

	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "raw.jwt.value"})
	raw, err := idTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "raw.jwt.value", raw)
}
