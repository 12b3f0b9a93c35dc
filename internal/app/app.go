package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/loomworks/loom/internal/config"
	"github.com/loomworks/loom/internal/ctxlog"
	"github.com/loomworks/loom/internal/discovery"
	"github.com/loomworks/loom/internal/registry"
	"github.com/loomworks/loom/internal/settings"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle. Reports go to outW; logs go to errW so report modes stay
// machine-readable.
type App struct {
	outW     io.Writer
	errW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	settings settings.Settings
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Startup failures (unloadable configuration, invalid settings) panic; the
// entrypoint recovers and reports them.
func NewApp(outW, errW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load the workspace configuration into the format-agnostic model first.
	workspace, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Workspace configuration loaded.", "fibers", len(workspace.Fibers), "tools", len(workspace.Tools))

	reg := registry.New()
	reg.ApplyConfigured(ctx, workspace)

	// Module manifests fill in what the workspace did not declare.
	if appConfig.ModulesPath != "" {
		manifests, err := discovery.Scan(ctx, loader, appConfig.ModulesPath)
		if err != nil {
			panic(fmt.Errorf("failed to scan module manifests: %w", err))
		}
		for _, m := range manifests {
			reg.ApplyDiscovered(ctx, m)
		}
		logger.Debug("Module manifests applied.", "count", len(manifests))
	}

	sett, err := settings.Load(appConfig.SettingsPath)
	if err != nil {
		panic(err)
	}
	logger.Debug("Runtime settings resolved.", "concurrency", sett.Concurrency, "check_timeout_ms", sett.CheckTimeoutMS)

	return &App{
		outW:     outW,
		errW:     errW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
		settings: sett,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
