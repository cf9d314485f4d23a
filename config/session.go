package config

import (
	"strings"
	"time"
)

// SessionBackend selects the session store medium.
type SessionBackend string

const (
	// SessionBackendFile persists the session in a local JSON file.
	SessionBackendFile SessionBackend = "file"
	// SessionBackendRedis persists the session in Redis (shared-host
	// deployments).
	SessionBackendRedis SessionBackend = "redis"
)

// RedisConfig contains Redis connection settings for the session store.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// SessionConfig contains session store configuration.
type SessionConfig struct {
	// Backend selects the store medium: file or redis.
	Backend SessionBackend `env:"SESSION_BACKEND" envDefault:"file"`

	// FilePath is the session file location for the file backend.
	// Empty means <user config dir>/promptmgr/session.json, resolved at
	// bootstrap.
	FilePath string `env:"SESSION_FILE"`

	// TTL is the validity window written on every successful exchange.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Redis connection settings (used when Backend=redis).
	Redis RedisConfig `envPrefix:"SESSION_REDIS_"`
}

// Sanitize normalises the session configuration.
func (c *SessionConfig) Sanitize() {
	switch strings.ToLower(string(c.Backend)) {
	case string(SessionBackendRedis):
		c.Backend = SessionBackendRedis
	default:
		c.Backend = SessionBackendFile
	}
	c.FilePath = strings.TrimSpace(c.FilePath)
	if c.TTL <= 0 {
		c.TTL = 168 * time.Hour
	}
}
