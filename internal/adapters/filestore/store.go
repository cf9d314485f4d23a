// Package filestore provides a file-backed session store. It is the
// headless-client analogue of browser cookies: a small set of named
// values, each with its own expiry, surviving process restarts.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
	"github.com/college-predictor/prompt-manager-fe/internal/ports"
)

var _ ports.SessionStore = (*Store)(nil)

// entry is one persisted attribute with its medium-level expiry.
type entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps the session attributes in a single JSON file. All
// mutations rewrite the whole file under one mutex, which makes Clear
// atomic with respect to readers: a reader either sees the full record
// or none of it.
type Store struct {
	path string

	mu      sync.Mutex
	entries map[domainauth.SessionKey]entry
}

// New opens (or creates) the store at path. A missing file yields an
// empty store; an unreadable or corrupt file is discarded rather than
// partially trusted.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("session file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	s := &Store{
		path:    path,
		entries: make(map[domainauth.SessionKey]entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if unmarshalErr := json.Unmarshal(data, &s.entries); unmarshalErr != nil {
		// Corrupt session files are never partially trusted.
		s.entries = make(map[domainauth.SessionKey]entry)
	}
	return s, nil
}

func (s *Store) Set(_ context.Context, key domainauth.SessionKey, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("session key cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
	return s.persistLocked()
}

func (s *Store) Get(_ context.Context, key domainauth.SessionKey) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !time.Now().Before(e.ExpiresAt) {
		// Medium-level expiry. Left in place; reads have no write side
		// effects, and the next mutation rewrites the file anyway.
		return "", false, nil
	}
	return e.Value, true, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[domainauth.SessionKey]entry)
	return s.persistLocked()
}

// persistLocked rewrites the backing file. Callers must hold s.mu.
// Write-to-temp plus rename keeps concurrent process crashes from
// leaving a half-written file behind.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session entries: %w", err)
	}

	tmp := s.path + ".tmp"
	if writeErr := os.WriteFile(tmp, data, 0o600); writeErr != nil {
		return fmt.Errorf("write session file: %w", writeErr)
	}
	if renameErr := os.Rename(tmp, s.path); renameErr != nil {
		return fmt.Errorf("replace session file: %w", renameErr)
	}
	return nil
}
