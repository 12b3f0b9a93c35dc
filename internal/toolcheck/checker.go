package toolcheck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/loomworks/loom/internal/config"
	"github.com/loomworks/loom/internal/ctxlog"
	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/procpool"
	"github.com/loomworks/loom/internal/statuscache"
)

// Executor runs a shell script and reports its output and exit code.
// The process pool satisfies this; tests substitute fakes.
type Executor interface {
	Exec(ctx context.Context, script string) (procpool.Result, error)
}

// Options tune a single CheckAll batch.
type Options struct {
	// Concurrency bounds simultaneous probes. Zero means 16.
	Concurrency int
	// Timeout bounds each individual probe. Zero means 1200ms.
	Timeout time.Duration
	// WarmupTimeout bounds the package-manager list warm-up. Zero means
	// 500ms. The warm-up is best effort; on failure membership probes
	// fall back to per-tool queries.
	WarmupTimeout time.Duration
	// OnProgress, when set, is called once per completed tool from the
	// dispatching goroutine.
	OnProgress func(toolID string, result model.ToolStatusResult)
	// SkipCacheRead forces fresh probes for every tool.
	SkipCacheRead bool
	// SkipCacheWrite leaves the cache untouched after the batch.
	SkipCacheWrite bool
}

func (o *Options) applyDefaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 16
	}
	if o.Timeout <= 0 {
		o.Timeout = 1200 * time.Millisecond
	}
	if o.WarmupTimeout <= 0 {
		o.WarmupTimeout = 500 * time.Millisecond
	}
}

// Checker probes tool availability through a shell executor.
type Checker struct {
	exec  Executor
	cache *statuscache.Cache
	pm    *config.PackageManager

	// lookPath is swapped out in tests; defaults to exec.LookPath.
	lookPath func(name string) (string, error)
	// pathExists is swapped out in tests; defaults to a stat call.
	pathExists func(path string) bool
}

// NewChecker returns a checker backed by the given executor. cache and
// pm may be nil, disabling caching and package-manager probes
// respectively.
func NewChecker(executor Executor, cache *statuscache.Cache, pm *config.PackageManager) *Checker {
	return &Checker{
		exec:       executor,
		cache:      cache,
		pm:         pm,
		lookPath:   exec.LookPath,
		pathExists: defaultPathExists,
	}
}

// CheckAll probes every tool in the map and returns a result per tool
// ID. Cached results short-circuit their probes. Probe timeouts produce
// an error-status result and a warning rather than failing the batch;
// only context cancellation aborts it.
func (c *Checker) CheckAll(ctx context.Context, tools map[string]model.ToolConfig, opts Options) (map[string]model.ToolStatusResult, []model.Warning, error) {
	opts.applyDefaults()
	log := ctxlog.FromContext(ctx)

	results := make(map[string]model.ToolStatusResult, len(tools))
	var warnings []model.Warning

	// Cache pass first, so the warm-up only runs when a probe will.
	var pending []model.ToolConfig
	for _, id := range sortedToolIDs(tools) {
		cfg := tools[id]
		if c.cache != nil && !opts.SkipCacheRead {
			if cached := c.cache.Get(id, cfg); cached != nil {
				results[id] = *cached
				if opts.OnProgress != nil {
					opts.OnProgress(id, *cached)
				}
				continue
			}
		}
		pending = append(pending, cfg)
	}
	log.Debug("Tool check batch", "total", len(tools), "cached", len(results), "pending", len(pending))

	if len(pending) == 0 {
		return results, warnings, nil
	}

	installedPkgs := c.warmUpPackageIndex(ctx, pending, opts.WarmupTimeout)

	type outcome struct {
		id     string
		result model.ToolStatusResult
	}
	jobs := make(chan model.ToolConfig)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cfg := range jobs {
				outcomes <- outcome{id: cfg.ID, result: c.checkOne(ctx, cfg, installedPkgs, opts.Timeout)}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, cfg := range pending {
			select {
			case jobs <- cfg:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for out := range outcomes {
		if ctx.Err() != nil {
			// Drain remaining workers without recording their results.
			continue
		}
		results[out.id] = out.result
		if out.result.Status == model.StatusError && out.result.Message == "timeout" {
			warnings = append(warnings, model.ProbeTimeout(out.id))
		}
		if c.cache != nil && !opts.SkipCacheWrite {
			c.cache.Put(out.id, tools[out.id], out.result)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(out.id, out.result)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if c.cache != nil && !opts.SkipCacheWrite {
		if err := c.cache.Flush(ctx); err != nil {
			log.Warn("Tool status cache flush failed", "error", err)
		}
	}
	return results, warnings, nil
}

// checkOne runs a single probe under its own timeout.
func (c *Checker) checkOne(ctx context.Context, cfg model.ToolConfig, installedPkgs map[string]struct{}, timeout time.Duration) model.ToolStatusResult {
	start := time.Now()
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := c.probe(probeCtx, cfg, installedPkgs)

	if probeCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		result = model.ToolStatusResult{Status: model.StatusError, Message: "timeout"}
	}
	if result.Status == model.StatusInstalled && cfg.RequiredVersion != "" && cfg.VersionCommand != "" {
		c.applyVersionPolicy(probeCtx, cfg, &result)
	}
	result.SetDuration(time.Since(start))
	return result
}

// probe dispatches on the resolved strategy. VersionValid defaults to
// true on installed results; the version policy may clear it afterward.
func (c *Checker) probe(ctx context.Context, cfg model.ToolConfig, installedPkgs map[string]struct{}) model.ToolStatusResult {
	installed := model.ToolStatusResult{Status: model.StatusInstalled, VersionValid: true}
	absent := model.ToolStatusResult{Status: model.StatusNotInstalled}

	switch ResolveStrategy(cfg) {
	case model.StrategyCommand:
		return c.probeScript(ctx, cfg.CheckCommand)
	case model.StrategyPath:
		if c.pathExists(cfg.CheckPath) {
			return installed
		}
		absent.Message = fmt.Sprintf("path %s does not exist", cfg.CheckPath)
		return absent
	case model.StrategyPackageManager:
		return c.probePackage(ctx, cfg, installedPkgs)
	case model.StrategyExpression:
		return c.probeScript(ctx, cfg.Expression)
	}

	// Default strategy: executable named after the tool on PATH.
	if _, err := c.lookPath(cfg.ID); err != nil {
		absent.Message = fmt.Sprintf("%s not found on PATH", cfg.ID)
		return absent
	}
	return installed
}

// probeScript treats exit 0 as installed and any other exit as absent.
// Executor failures that are not plain exit codes are infrastructure
// errors, not absence.
func (c *Checker) probeScript(ctx context.Context, script string) model.ToolStatusResult {
	res, err := c.exec.Exec(ctx, script)
	if err != nil {
		return model.ToolStatusResult{Status: model.StatusError, Message: err.Error()}
	}
	if res.ExitCode != 0 {
		return model.ToolStatusResult{
			Status:  model.StatusNotInstalled,
			Message: fmt.Sprintf("probe exited %d", res.ExitCode),
		}
	}
	return model.ToolStatusResult{Status: model.StatusInstalled, VersionValid: true}
}

// probePackage consults the warmed package index when available and
// falls back to a per-tool query command otherwise.
func (c *Checker) probePackage(ctx context.Context, cfg model.ToolConfig, installedPkgs map[string]struct{}) model.ToolStatusResult {
	if installedPkgs != nil {
		if _, ok := installedPkgs[cfg.Package]; ok {
			return model.ToolStatusResult{Status: model.StatusInstalled, VersionValid: true}
		}
		return model.ToolStatusResult{
			Status:  model.StatusNotInstalled,
			Message: fmt.Sprintf("package %s not in package manager index", cfg.Package),
		}
	}
	if c.pm == nil || c.pm.QueryCommand == "" {
		return model.ToolStatusResult{
			Status:  model.StatusError,
			Message: fmt.Sprintf("package probe for %s but no package manager configured", cfg.Package),
		}
	}
	query := strings.ReplaceAll(c.pm.QueryCommand, "{package}", cfg.Package)
	return c.probeScript(ctx, query)
}

// warmUpPackageIndex runs the package manager's list command once so
// membership probes become map lookups. Returns nil when no tool needs
// it or the warm-up fails, in which case probes fall back to per-tool
// queries.
func (c *Checker) warmUpPackageIndex(ctx context.Context, pending []model.ToolConfig, timeout time.Duration) map[string]struct{} {
	if c.pm == nil || c.pm.ListCommand == "" {
		return nil
	}
	needed := false
	for _, cfg := range pending {
		if ResolveStrategy(cfg) == model.StrategyPackageManager {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	warmCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := c.exec.Exec(warmCtx, c.pm.ListCommand)
	if err != nil || res.ExitCode != 0 {
		ctxlog.FromContext(ctx).Debug("Package index warm-up failed, falling back to per-tool queries",
			"manager", c.pm.Name, "error", err)
		return nil
	}

	index := make(map[string]struct{})
	for _, line := range strings.Split(res.Stdout, "\n") {
		// First field per line is the package name; the rest is
		// manager-specific noise (versions, repo tags).
		fields := strings.Fields(line)
		if len(fields) > 0 {
			index[fields[0]] = struct{}{}
		}
	}
	return index
}

// applyVersionPolicy runs the version command and validates its output
// against the declared minimum. Probe failures leave the tool installed
// but mark the version invalid with a diagnostic message.
func (c *Checker) applyVersionPolicy(ctx context.Context, cfg model.ToolConfig, result *model.ToolStatusResult) {
	res, err := c.exec.Exec(ctx, cfg.VersionCommand)
	if err != nil || res.ExitCode != 0 {
		result.VersionValid = false
		result.Message = "version probe failed"
		return
	}
	observed := ExtractVersion(res.Stdout)
	if observed == "" {
		result.VersionValid = false
		result.Message = fmt.Sprintf("no version found in output of %q", cfg.VersionCommand)
		return
	}
	result.ObservedVersion = observed

	ok, err := ValidateVersion(observed, cfg.RequiredVersion)
	if err != nil {
		result.VersionValid = false
		result.Message = err.Error()
		return
	}
	result.VersionValid = ok
	if !ok {
		result.Message = fmt.Sprintf("version %s does not satisfy minimum %s", observed, cfg.RequiredVersion)
	}
}

func defaultPathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sortedToolIDs(tools map[string]model.ToolConfig) []string {
	ids := make([]string, 0, len(tools))
	for id := range tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
