// Package auth contains domain-level types for the client session core.
// It is pure and free of adapter/transport concerns.
package auth

import (
	"strconv"
	"time"
)

// SessionKey identifies one of the fixed persisted session attributes.
// The underlying string values double as the storage keys, so they must
// stay stable across releases.
type SessionKey string

const (
	// KeyToken holds the opaque marker issued by the backend exchange.
	KeyToken SessionKey = "session_token"
	// KeyExpiry holds the record expiry as epoch milliseconds.
	KeyExpiry SessionKey = "session_expiry"
	// KeyEmail holds the authenticated user's email.
	KeyEmail SessionKey = "user_email"
	// KeyName holds the authenticated user's display name.
	KeyName SessionKey = "user_name"
)

// SessionKeys lists every persisted key. Clear semantics cover exactly
// this set.
var SessionKeys = []SessionKey{KeyToken, KeyExpiry, KeyEmail, KeyName}

// DefaultRecordTTL is the validity window written on every successful
// backend exchange.
const DefaultRecordTTL = 7 * 24 * time.Hour

// Principal is the authenticated user as known to this client.
type Principal struct {
	Email       string
	DisplayName string

	// Handle references the live identity-provider object for this
	// principal. It is owned by the provider, is only meaningful for the
	// lifetime of the process, and is never persisted.
	Handle any
}

// SessionRecord is the persisted subset of a Principal plus validity
// bounds. It is created only after a successful backend exchange.
type SessionRecord struct {
	Email        string
	DisplayName  string
	IssuedMarker string
	ExpiresAt    time.Time
}

// IsValid reports whether the record may be trusted at the given
// instant. A record missing any attribute is partial and must be
// treated as invalid, never partially trusted.
func (r SessionRecord) IsValid(now time.Time) bool {
	if r.IssuedMarker == "" || r.Email == "" || r.DisplayName == "" {
		return false
	}
	return r.ExpiresAt.After(now)
}

// Matches reports whether the record belongs to the given principal.
func (r SessionRecord) Matches(p Principal) bool {
	return r.Email != "" && r.Email == p.Email
}

// Encode renders the record as the fixed key set for a session store.
func (r SessionRecord) Encode() map[SessionKey]string {
	return map[SessionKey]string{
		KeyToken:  r.IssuedMarker,
		KeyExpiry: strconv.FormatInt(r.ExpiresAt.UnixMilli(), 10),
		KeyEmail:  r.Email,
		KeyName:   r.DisplayName,
	}
}

// DecodeRecord rebuilds a SessionRecord from stored key values. Missing
// keys yield zero fields; callers decide validity via IsValid. A
// malformed expiry value yields a zero ExpiresAt, which IsValid rejects.
func DecodeRecord(values map[SessionKey]string) SessionRecord {
	rec := SessionRecord{
		Email:        values[KeyEmail],
		DisplayName:  values[KeyName],
		IssuedMarker: values[KeyToken],
	}
	if raw := values[KeyExpiry]; raw != "" {
		if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
			rec.ExpiresAt = time.UnixMilli(millis)
		}
	}
	return rec
}

// AuthState is the reconciler's current belief about the session.
type AuthState int

const (
	// StateUnknown is the initial state before any check completes.
	StateUnknown AuthState = iota
	// StateAuthenticated means the identity provider and the backend
	// agree on a signed-in principal.
	StateAuthenticated
	// StateUnauthenticated means there is no trusted session.
	StateUnauthenticated
)

// String returns a stable label for logging and metrics tags.
func (s AuthState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}
