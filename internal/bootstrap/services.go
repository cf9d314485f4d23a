package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/college-predictor/prompt-manager-fe/config"
	"github.com/college-predictor/prompt-manager-fe/internal/adapters/term"
	"github.com/college-predictor/prompt-manager-fe/internal/gateway"
	"github.com/college-predictor/prompt-manager-fe/internal/observability/statsd"
	"github.com/college-predictor/prompt-manager-fe/internal/ports"
	"github.com/college-predictor/prompt-manager-fe/internal/service"
)

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Identity   IdentityProvider
	Store      ports.SessionStore
	Gateway    *gateway.Client
	Reconciler *service.Reconciler
	AppStore   *service.AppStore
	Metrics    *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
}

// BuildServices wires the session store, identity provider, backend
// gateway, reconciler, and application data store from configuration.
// The reconciler is constructed but not started; callers decide when
// initialization runs.
func BuildServices(ctx context.Context, deps ServiceDeps) (*ServiceContainer, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	store, err := BuildSessionStore(cfg.Session, os.UserConfigDir)
	if err != nil {
		return nil, fmt.Errorf("build session store: %w", err)
	}

	identity, err := BuildIdentityProvider(ctx, cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("build identity provider: %w", err)
	}

	gw, err := gateway.New(gateway.Options{
		BaseURL:   cfg.Backend.URL,
		Store:     store,
		Navigator: term.NewNavigator(os.Stderr),
		Logger:    logger,
		Timeout:   cfg.Backend.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build backend gateway: %w", err)
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Warn("metrics sink unavailable, continuing without metrics", "error", err)
		metrics = nil
	}
	var sink statsd.Sink = statsd.Noop{}
	if metrics != nil {
		sink = metrics
	}

	reconciler, err := service.NewReconciler(service.ReconcilerOptions{
		Provider:  identity.Provider,
		Store:     store,
		Backend:   gw,
		Logger:    logger,
		Metrics:   sink,
		RecordTTL: cfg.Session.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("build session reconciler: %w", err)
	}

	appStore, err := service.NewAppStore(gw, logger)
	if err != nil {
		return nil, fmt.Errorf("build app store: %w", err)
	}

	return &ServiceContainer{
		Identity:   identity,
		Store:      store,
		Gateway:    gw,
		Reconciler: reconciler,
		AppStore:   appStore,
		Metrics:    metrics,
	}, nil
}
