package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/college-predictor/prompt-manager-fe/config"
	"github.com/college-predictor/prompt-manager-fe/internal/adapters/filestore"
	"github.com/college-predictor/prompt-manager-fe/internal/adapters/oidc"
	redisadapter "github.com/college-predictor/prompt-manager-fe/internal/adapters/redis"
	"github.com/college-predictor/prompt-manager-fe/internal/adapters/staticauth"
	"github.com/college-predictor/prompt-manager-fe/internal/ports"
)

// IdentityProvider bundles the provider port with its interactive
// sign-in entry point. Sign-in is adapter-specific (static providers
// flip a flag, OIDC redeems a refresh grant) so it is not part of the
// port itself.
type IdentityProvider struct {
	Provider ports.IdentityProvider
	SignIn   func(ctx context.Context) error
}

// BuildIdentityProvider creates the identity provider selected by
// AUTH_MODE.
func BuildIdentityProvider(ctx context.Context, cfg config.AuthConfig, logger *slog.Logger) (IdentityProvider, error) {
	switch cfg.Mode {
	case config.AuthModeStatic:
		prov, err := staticauth.NewProvider(staticauth.Config{
			Email:       cfg.Static.Email,
			DisplayName: cfg.Static.DisplayName,
		})
		if err != nil {
			return IdentityProvider{}, fmt.Errorf("build static auth provider: %w", err)
		}
		return IdentityProvider{
			Provider: prov,
			SignIn: func(context.Context) error {
				prov.SignIn()
				return nil
			},
		}, nil

	case config.AuthModeOIDC:
		o := cfg.OIDC
		if o.DiscoveryURL == "" || o.ClientID == "" {
			return IdentityProvider{}, fmt.Errorf(
				"AUTH_MODE=oidc requires OIDC_DISCOVERY_URL and OIDC_CLIENT_ID (discovery_url_empty=%t client_id_empty=%t)",
				o.DiscoveryURL == "", o.ClientID == "")
		}
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			Scope:        o.Scope,
			DiscoveryURL: o.DiscoveryURL,
			RefreshToken: o.RefreshToken,
			Logger:       logger,
		})
		if err != nil {
			return IdentityProvider{}, fmt.Errorf("build OIDC provider: %w", err)
		}
		return IdentityProvider{Provider: prov, SignIn: prov.SignIn}, nil

	default:
		return IdentityProvider{}, fmt.Errorf("unsupported auth mode: %q", cfg.Mode)
	}
}

// BuildSessionStore creates the session store selected by
// SESSION_BACKEND.
func BuildSessionStore(cfg config.SessionConfig, userConfigDir func() (string, error)) (ports.SessionStore, error) {
	switch cfg.Backend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redisadapter.NewSessionCache(client), nil

	default:
		path := cfg.FilePath
		if path == "" {
			base, err := userConfigDir()
			if err != nil {
				return nil, fmt.Errorf("resolve user config dir: %w", err)
			}
			path = filepath.Join(base, "promptmgr", "session.json")
		}
		store, err := filestore.New(path)
		if err != nil {
			return nil, fmt.Errorf("open session file store: %w", err)
		}
		return store, nil
	}
}
