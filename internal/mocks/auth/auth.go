// Package auth contains simple hand-written test doubles for the
// session ports. These are lightweight and suitable for unit tests
// without codegen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
	"github.com/college-predictor/prompt-manager-fe/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*ScriptedIdentityProvider)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.Navigator        = (*RecordingNavigator)(nil)
)

// ScriptedIdentityProvider simulates an identity provider whose state
// changes are driven explicitly by the test via Emit.
type ScriptedIdentityProvider struct {
	CurrentFunc    func() (domainauth.Principal, bool)
	FreshTokenFunc func(ctx context.Context, p domainauth.Principal, forceRefresh bool) (string, error)
	SignOutFunc    func(ctx context.Context) error

	mu           sync.Mutex
	current      *domainauth.Principal
	listeners    map[int]ports.PrincipalListener
	nextListener int
	tokenCount   int

	signOutCalls    atomic.Int64
	freshTokenCalls atomic.Int64
}

// NewScriptedIdentityProvider creates a provider with no signed-in
// principal.
func NewScriptedIdentityProvider() *ScriptedIdentityProvider {
	return &ScriptedIdentityProvider{listeners: make(map[int]ports.PrincipalListener)}
}

// SetCurrent sets the synchronously observable principal without
// notifying listeners.
func (m *ScriptedIdentityProvider) SetCurrent(p *domainauth.Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = p
}

// Emit updates the current principal and fires every listener, the way
// a live provider reports a state change.
func (m *ScriptedIdentityProvider) Emit(p *domainauth.Principal) {
	m.mu.Lock()
	m.current = p
	fns := make([]ports.PrincipalListener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

func (m *ScriptedIdentityProvider) CurrentPrincipal() (domainauth.Principal, bool) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domainauth.Principal{}, false
	}
	return *m.current, true
}

func (m *ScriptedIdentityProvider) OnPrincipalChange(fn ports.PrincipalListener) func() {
	m.mu.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *ScriptedIdentityProvider) FreshToken(ctx context.Context, p domainauth.Principal, forceRefresh bool) (string, error) {
	m.freshTokenCalls.Add(1)
	if m.FreshTokenFunc != nil {
		return m.FreshTokenFunc(ctx, p, forceRefresh)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return "", errors.New("no signed-in principal")
	}
	m.tokenCount++
	return fmt.Sprintf("token-%d", m.tokenCount), nil
}

// SignOut clears the current principal and notifies listeners with nil.
func (m *ScriptedIdentityProvider) SignOut(ctx context.Context) error {
	m.signOutCalls.Add(1)
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx)
	}
	m.Emit(nil)
	return nil
}

// SignOutCalls reports how many times SignOut was invoked.
func (m *ScriptedIdentityProvider) SignOutCalls() int64 { return m.signOutCalls.Load() }

// FreshTokenCalls reports how many times FreshToken was invoked.
func (m *ScriptedIdentityProvider) FreshTokenCalls() int64 { return m.freshTokenCalls.Load() }

// MemorySessionStore is an in-memory session store for unit tests. It
// honors per-key expiry the way a real medium would.
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[domainauth.SessionKey]memoryEntry

	// SetErr, GetErr, and ClearErr, when set, are returned by the
	// corresponding operation to exercise failure paths.
	SetErr   error
	GetErr   error
	ClearErr error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[domainauth.SessionKey]memoryEntry)}
}

func (m *MemorySessionStore) Set(_ context.Context, key domainauth.SessionKey, value string, ttl time.Duration) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, key domainauth.SessionKey) (string, bool, error) {
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !time.Now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MemorySessionStore) Clear(_ context.Context) error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[domainauth.SessionKey]memoryEntry)
	return nil
}

// SeedRecord stores a full record directly, bypassing TTL derivation.
func (m *MemorySessionStore) SeedRecord(rec domainauth.SessionRecord, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range rec.Encode() {
		m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	}
}

// Len reports how many keys currently hold values, expired or not.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RecordingNavigator counts hard navigations to the login surface.
type RecordingNavigator struct {
	calls atomic.Int64
}

func (n *RecordingNavigator) ToLogin(context.Context) { n.calls.Add(1) }

// Calls reports how many navigations happened.
func (n *RecordingNavigator) Calls() int64 { return n.calls.Load() }
