package app

import (
	"context"
	"fmt"

	"github.com/loomworks/loom/internal/ctxlog"
	"github.com/loomworks/loom/internal/graph"
	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/order"
	"github.com/loomworks/loom/internal/procpool"
	"github.com/loomworks/loom/internal/statuscache"
	"github.com/loomworks/loom/internal/toolcheck"
)

// Run executes the main application logic based on the App's configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	fibers := a.registry.Fibers()
	g, warnings := graph.Build(ctx, fibers, a.registry.ConfigDeps())
	a.logger.Debug("Dependency graph built.", "node_count", g.Len())

	// Pinning core/dotfiles to the front only makes sense for load order;
	// a teardown order must release them last.
	ordered, orderWarnings := order.Order(ctx, fibers, g, order.Options{
		Reverse:              a.config.Reverse,
		HideDisabled:         a.config.HideDisabled,
		PrioritizeConfigured: a.config.PrioritizeConfigured,
		PinSpecialFibers:     !a.config.Reverse,
		SortAlphabetically:   a.config.Alphabetical,
	})
	warnings = append(warnings, orderWarnings...)
	for _, w := range warnings {
		a.logger.Warn(w.Detail, "kind", w.Kind.String(), "subject", w.Subject)
	}

	if a.config.Mode == ModeOrder {
		for _, id := range ordered {
			fmt.Fprintln(a.outW, id)
		}
		a.logger.Debug("App.Run method finished.")
		return nil
	}

	results, checkWarnings, err := a.checkTools(ctx)
	if err != nil {
		return fmt.Errorf("tool check failed: %w", err)
	}
	warnings = append(warnings, checkWarnings...)
	for _, w := range checkWarnings {
		a.logger.Warn(w.Detail, "kind", w.Kind.String(), "subject", w.Subject)
	}

	report := a.buildReport(ordered, results, warnings)
	if err := report.render(a.outW, a.config.Mode); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// checkTools probes every tool any fiber or enabled chain requires.
func (a *App) checkTools(ctx context.Context) (map[string]model.ToolStatusResult, []model.Warning, error) {
	tools := a.registry.RequiredTools()
	if len(tools) == 0 {
		return nil, nil, nil
	}

	pool, err := procpool.New(a.settings.Concurrency)
	if err != nil {
		return nil, nil, err
	}

	var cache *statuscache.Cache
	if !a.config.NoCache {
		cache = statuscache.New(a.settings.CachePath, a.settings.CacheTTL())
		cache.Load(ctx)
	}

	checker := toolcheck.NewChecker(pool, cache, a.registry.PackageManager())
	return checker.CheckAll(ctx, tools, toolcheck.Options{
		Concurrency:   a.settings.Concurrency,
		Timeout:       a.settings.CheckTimeout(),
		WarmupTimeout: a.settings.WarmupTimeout(),
	})
}
