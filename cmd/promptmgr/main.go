package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/college-predictor/prompt-manager-fe/config"
	"github.com/college-predictor/prompt-manager-fe/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig

	services *bootstrap.ServiceContainer
}

// Services builds the service container on first use so commands that
// never touch the backend (usage, flag errors) stay cheap.
func (c *commandContext) Services() (*bootstrap.ServiceContainer, error) {
	if c.services != nil {
		return c.services, nil
	}
	svcs, err := bootstrap.BuildServices(c.Ctx, bootstrap.ServiceDeps{
		Config: &c.Config,
		Logger: c.Logger,
	})
	if err != nil {
		return nil, err
	}
	c.services = svcs
	return svcs, nil
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
	}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	if cmdCtx.services != nil && cmdCtx.services.Metrics != nil {
		if closeErr := cmdCtx.services.Metrics.Close(); closeErr != nil {
			logger.Warn("metrics close failed", "error", closeErr)
		}
	}
	if runErr != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in with the identity provider and establish a backend session",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "End the backend session, sign out of the identity provider, and clear local state",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the signed-in user",
			run:         runWhoami,
		},
		"projects": {
			name:        "projects",
			description: "List, create, or delete projects (projects [list|create|delete])",
			run:         runProjects,
		},
		"models": {
			name:        "models",
			description: "List available LLM models",
			run:         runModels,
		},
		"dashboard": {
			name:        "dashboard",
			description: "Show projects and models in one view",
			run:         runDashboard,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: promptmgr <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := cmds[name]
		if err := writef(os.Stdout, "  %-12s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
