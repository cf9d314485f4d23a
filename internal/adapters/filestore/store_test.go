package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := New(path)
	require.NoError(t, err)
	return store, path
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestNew_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "session.json")
	_, err := New(path)
	require.NoError(t, err)

	info, statErr := os.Stat(filepath.Dir(path))
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, domainauth.KeyToken, "authenticated", time.Hour))

	value, ok, err := store.Get(ctx, domainauth.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "authenticated", value)
}

func TestStore_GetMissingKey(t *testing.T) {
	store, _ := newStore(t)

	_, ok, err := store.Get(context.Background(), domainauth.KeyEmail)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetValidation(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.Error(t, store.Set(ctx, "", "v", time.Hour))
	require.Error(t, store.Set(ctx, domainauth.KeyToken, "v", 0))
	require.Error(t, store.Set(ctx, domainauth.KeyToken, "v", -time.Second))
}

func TestStore_ExpiredEntryReportsAbsent(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, domainauth.KeyToken, "authenticated", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := store.Get(ctx, domainauth.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Clear_RemovesEverything(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for _, key := range domainauth.SessionKeys {
		require.NoError(t, store.Set(ctx, key, "v", time.Hour))
	}
	require.NoError(t, store.Clear(ctx))

	for _, key := range domainauth.SessionKeys {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "key %s must be gone after Clear", key)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	store, path := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, domainauth.KeyEmail, "alice@example.com", time.Hour))

	reopened, err := New(path)
	require.NoError(t, err)

	value, ok, getErr := reopened.Get(ctx, domainauth.KeyEmail)
	require.NoError(t, getErr)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", value)
}

func TestNew_CorruptFileDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := New(path)
	require.NoError(t, err)

	_, ok, getErr := store.Get(context.Background(), domainauth.KeyToken)
	require.NoError(t, getErr)
	assert.False(t, ok, "corrupt state is discarded, never partially trusted")
}

func TestStore_FilePermissions(t *testing.T) {
	store, path := newStore(t)
	require.NoError(t, store.Set(context.Background(), domainauth.KeyToken, "authenticated", time.Hour))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
