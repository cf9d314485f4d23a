package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/college-predictor/prompt-manager-fe/config"
	"github.com/college-predictor/prompt-manager-fe/internal/adapters/filestore"
)

func TestBuildIdentityProvider_StaticMode(t *testing.T) {
	identity, err := BuildIdentityProvider(context.Background(), config.AuthConfig{
		Mode: config.AuthModeStatic,
		Static: config.StaticAuthConfig{
			Email:       "dev@example.com",
			DisplayName: "Dev User",
		},
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, identity.Provider)
	require.NotNil(t, identity.SignIn)

	_, ok := identity.Provider.CurrentPrincipal()
	assert.False(t, ok, "static provider starts signed out")

	require.NoError(t, identity.SignIn(context.Background()))
	principal, ok := identity.Provider.CurrentPrincipal()
	require.True(t, ok)
	assert.Equal(t, "dev@example.com", principal.Email)
}

func TestBuildIdentityProvider_OIDCMissingConfig(t *testing.T) {
	_, err := BuildIdentityProvider(context.Background(), config.AuthConfig{
		Mode: config.AuthModeOIDC,
	}, nil)
	require.Error(t, err)
}

func TestBuildIdentityProvider_UnknownMode(t *testing.T) {
	_, err := BuildIdentityProvider(context.Background(), config.AuthConfig{Mode: "ldap"}, nil)
	require.Error(t, err)
}

func TestBuildSessionStore_ExplicitFilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := BuildSessionStore(config.SessionConfig{
		Backend:  config.SessionBackendFile,
		FilePath: path,
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, (*filestore.Store)(nil), store)
}

func TestBuildSessionStore_DefaultPathUsesUserConfigDir(t *testing.T) {
	base := t.TempDir()
	called := false
	store, err := BuildSessionStore(config.SessionConfig{
		Backend: config.SessionBackendFile,
	}, func() (string, error) {
		called = true
		return base, nil
	})
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.True(t, called)
}

func TestBuildSessionStore_UserConfigDirFailure(t *testing.T) {
	_, err := BuildSessionStore(config.SessionConfig{
		Backend: config.SessionBackendFile,
	}, func() (string, error) {
		return "", assert.AnError
	})
	require.Error(t, err)
}
