package config

import (
	"strings"
	"time"
)

// BackendConfig contains the prompt-manager backend HTTP configuration.
type BackendConfig struct {
	// URL is the backend base URL.
	URL string `env:"BACKEND_URL" envDefault:"http://localhost:8000"`

	// Timeout bounds each backend request.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"30s"`
}

// Sanitize normalises the backend configuration.
func (c *BackendConfig) Sanitize() {
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}
