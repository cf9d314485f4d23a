// Package redis provides a Redis-backed session store for deployments
// where the client session must be shared across hosts (kiosk or
// gateway setups). Local single-user installs use the filestore
// adapter instead.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
	"github.com/college-predictor/prompt-manager-fe/internal/ports"
)

var _ ports.SessionStore = (*SessionCache)(nil)

// SessionCache stores each session attribute under its own key with a
// Redis-side TTL. The stored expiry attribute is still re-validated
// against wall-clock time by readers, so Redis TTL extension or clock
// skew cannot resurrect an expired record.
type SessionCache struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionCache creates a session cache with the default key prefix.
func NewSessionCache(client redis.UniversalClient) *SessionCache {
	return &SessionCache{client: client, prefix: "pmfe:session:"}
}

// NewSessionCacheWithPrefix creates a session cache with a custom key prefix.
func NewSessionCacheWithPrefix(client redis.UniversalClient, prefix string) *SessionCache {
	return &SessionCache{client: client, prefix: prefix}
}

func (c *SessionCache) Set(ctx context.Context, key domainauth.SessionKey, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("session key cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	return c.client.Set(ctx, c.prefix+string(key), value, ttl).Err()
}

func (c *SessionCache) Get(ctx context.Context, key domainauth.SessionKey) (string, bool, error) {
	value, err := c.client.Get(ctx, c.prefix+string(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

// Clear deletes every session attribute in one DEL command, so readers
// never observe a partially cleared record.
func (c *SessionCache) Clear(ctx context.Context) error {
	keys := make([]string, 0, len(domainauth.SessionKeys))
	for _, key := range domainauth.SessionKeys {
		keys = append(keys, c.prefix+string(key))
	}
	return c.client.Del(ctx, keys...).Err()
}
