package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullRecord() SessionRecord {
	return SessionRecord{
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		IssuedMarker: "authenticated",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestSessionRecord_IsValid(t *testing.T) {
	now := time.Now()

	t.Run("complete and unexpired", func(t *testing.T) {
		assert.True(t, fullRecord().IsValid(now))
	})

	t.Run("expired", func(t *testing.T) {
		rec := fullRecord()
		rec.ExpiresAt = now.Add(-time.Second)
		assert.False(t, rec.IsValid(now))
	})

	t.Run("expiry equal to now", func(t *testing.T) {
		rec := fullRecord()
		rec.ExpiresAt = now
		assert.False(t, rec.IsValid(now))
	})

	t.Run("missing any attribute invalidates", func(t *testing.T) {
		mutations := map[string]func(*SessionRecord){
			"marker": func(r *SessionRecord) { r.IssuedMarker = "" },
			"email":  func(r *SessionRecord) { r.Email = "" },
			"name":   func(r *SessionRecord) { r.DisplayName = "" },
			"expiry": func(r *SessionRecord) { r.ExpiresAt = time.Time{} },
		}
		for name, mutate := range mutations {
			rec := fullRecord()
			mutate(&rec)
			assert.False(t, rec.IsValid(now), "partial record without %s must not be trusted", name)
		}
	})
}

func TestSessionRecord_Matches(t *testing.T) {
	rec := fullRecord()
	assert.True(t, rec.Matches(Principal{Email: "alice@example.com"}))
	assert.False(t, rec.Matches(Principal{Email: "bob@example.com"}))
	assert.False(t, SessionRecord{}.Matches(Principal{}), "empty record matches nobody")
}

func TestSessionRecord_EncodeDecode(t *testing.T) {
	rec := fullRecord()

	decoded := DecodeRecord(rec.Encode())

	assert.Equal(t, rec.Email, decoded.Email)
	assert.Equal(t, rec.DisplayName, decoded.DisplayName)
	assert.Equal(t, rec.IssuedMarker, decoded.IssuedMarker)
	// Millisecond storage granularity.
	assert.WithinDuration(t, rec.ExpiresAt, decoded.ExpiresAt, time.Millisecond)
}

func TestDecodeRecord_MalformedExpiry(t *testing.T) {
	values := fullRecord().Encode()
	values[KeyExpiry] = "not-a-number"

	rec := DecodeRecord(values)

	assert.True(t, rec.ExpiresAt.IsZero())
	assert.False(t, rec.IsValid(time.Now()))
}

func TestDecodeRecord_MissingKeys(t *testing.T) {
	rec := DecodeRecord(map[SessionKey]string{KeyEmail: "alice@example.com"})
	assert.False(t, rec.IsValid(time.Now()))
}

func TestSessionKeys_CoversEveryAttribute(t *testing.T) {
	encoded := fullRecord().Encode()
	require.Len(t, encoded, len(SessionKeys))
	for _, key := range SessionKeys {
		_, ok := encoded[key]
		assert.True(t, ok, "key %s must round-trip through Encode", key)
	}
}

func TestAuthState_String(t *testing.T) {
	assert.Equal(t, "unknown", StateUnknown.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "invalid", AuthState(99).String())
}
