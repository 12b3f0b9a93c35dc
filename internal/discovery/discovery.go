// Package discovery locates module manifests under the modules root and
// loads them into configuration models with Discovered provenance.
package discovery

import (
	"context"
	"fmt"

	"github.com/loomworks/loom/internal/config"
	"github.com/loomworks/loom/internal/ctxlog"
	"github.com/loomworks/loom/internal/fsutil"
)

// ManifestName is the file each module directory declares itself with.
const ManifestName = "module.hcl"

// Scan walks the modules root for manifests and loads each through the
// given loader. Results are returned in path order, which is deterministic,
// so discovered fibers get a stable position in the orderer's input.
// A missing or empty modules root yields an empty slice.
func Scan(ctx context.Context, loader config.Loader, modulesRoot string) ([]*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	if modulesRoot == "" {
		return nil, nil
	}

	manifests, err := fsutil.FindFilesByName(modulesRoot, ManifestName)
	if err != nil {
		return nil, fmt.Errorf("failed to scan modules root %s: %w", modulesRoot, err)
	}
	logger.Debug("Module manifest scan complete.", "root", modulesRoot, "manifests", len(manifests))

	models := make([]*config.Model, 0, len(manifests))
	for _, manifest := range manifests {
		m, err := loader.Load(ctx, manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to load module manifest %s: %w", manifest, err)
		}
		models = append(models, m)
	}
	return models, nil
}
