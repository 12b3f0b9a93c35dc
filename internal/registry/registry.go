package registry

import (
	"context"
	"sort"

	"github.com/loomworks/loom/internal/config"
	"github.com/loomworks/loom/internal/ctxlog"
	"github.com/loomworks/loom/internal/model"
)

// Registry is the in-memory collection of module records. Fibers and chains
// are keyed by ID within their kind; insertion order of fibers is preserved
// because it is the orderer's default tie-break.
type Registry struct {
	fibers     map[string]*model.ModuleNode
	fiberOrder []string
	chains     map[string]*model.ModuleNode
	tools      map[string]*config.Tool
	pm         *config.PackageManager

	// enabledPinned marks fibers and chains whose enabled flag was set
	// explicitly by configuration; discovery must not overwrite those.
	enabledPinned map[string]struct{}
}

// New creates and initializes a new, empty Registry instance.
func New() *Registry {
	return &Registry{
		fibers:        make(map[string]*model.ModuleNode),
		chains:        make(map[string]*model.ModuleNode),
		tools:         make(map[string]*config.Tool),
		enabledPinned: make(map[string]struct{}),
	}
}

// ApplyConfigured merges the workspace configuration model into the
// registry. Fibers declared here carry Configured provenance; their
// dependency declarations land in ConfigDeps, additive to whatever a
// manifest self-reports.
func (r *Registry) ApplyConfigured(ctx context.Context, m *config.Model) {
	logger := ctxlog.FromContext(ctx)

	for _, f := range m.Fibers {
		node := r.fiber(f.Name)
		node.Provenance = model.Configured
		node.ConfigDeps = unionStrings(node.ConfigDeps, f.DependsOn)
		node.ToolDeps = unionStrings(node.ToolDeps, f.Tools)
		if f.Enabled != nil {
			// Configuration is the operator's intent: an explicit enabled
			// flag here wins over anything a manifest says.
			node.Enabled = *f.Enabled
			r.enabledPinned[f.Name] = struct{}{}
		}
		r.applyChains(f.Name, f.Chains, true)
		logger.Debug("Applied configured fiber.", "fiber", f.Name, "enabled", node.Enabled)
	}

	r.applyTools(m)
}

// ApplyDiscovered merges a discovered module manifest into the registry.
// Dependencies self-reported by the manifest land in SelfDeps. A fiber that
// is both configured and discovered keeps Configured provenance, and the
// configured enabled flag, if one was set, is not overwritten (configuration
// wins; discovery only proposes).
func (r *Registry) ApplyDiscovered(ctx context.Context, m *config.Model) {
	logger := ctxlog.FromContext(ctx)

	for _, f := range m.Fibers {
		node := r.fiber(f.Name)
		node.SelfDeps = unionStrings(node.SelfDeps, f.DependsOn)
		node.ToolDeps = unionStrings(node.ToolDeps, f.Tools)
		if f.Enabled != nil {
			if _, pinned := r.enabledPinned[f.Name]; !pinned {
				node.Enabled = *f.Enabled
			}
		}
		r.applyChains(f.Name, f.Chains, false)
		logger.Debug("Applied discovered fiber.", "fiber", f.Name, "provenance", node.Provenance.String())
	}

	// Manifest-declared tools fill gaps but never override the workspace.
	for name, tool := range m.Tools {
		if _, exists := r.tools[name]; !exists {
			r.tools[name] = tool
		}
	}
	if r.pm == nil {
		r.pm = m.PackageManager
	}
}

// fiber returns the node for the given ID, creating a default-enabled record
// on first reference.
func (r *Registry) fiber(id string) *model.ModuleNode {
	if node, ok := r.fibers[id]; ok {
		return node
	}
	node := &model.ModuleNode{
		ID:         id,
		Kind:       model.Fiber,
		Enabled:    true,
		Provenance: model.Discovered,
	}
	r.fibers[id] = node
	r.fiberOrder = append(r.fiberOrder, id)
	return node
}

// applyChains merges chain blocks under their owning fiber. Chain IDs are
// unique within the Chain kind, qualified by the owning fiber. Enabled
// flags follow the same precedence as fibers: a flag set by configuration
// is pinned and discovery cannot overwrite it.
func (r *Registry) applyChains(fiberID string, chains []*config.Chain, configured bool) {
	for _, c := range chains {
		id := fiberID + "/" + c.Name
		node, ok := r.chains[id]
		if !ok {
			node = &model.ModuleNode{
				ID:          id,
				Kind:        model.Chain,
				Enabled:     true,
				ParentFiber: fiberID,
			}
			r.chains[id] = node
		}
		node.ToolDeps = unionStrings(node.ToolDeps, c.Tools)
		if c.Enabled != nil {
			if configured {
				node.Enabled = *c.Enabled
				r.enabledPinned[id] = struct{}{}
			} else if _, pinned := r.enabledPinned[id]; !pinned {
				node.Enabled = *c.Enabled
			}
		}
	}
}

// applyTools applies workspace tool blocks, which override anything already
// present.
func (r *Registry) applyTools(m *config.Model) {
	for name, tool := range m.Tools {
		r.tools[name] = tool
	}
	if m.PackageManager != nil {
		r.pm = m.PackageManager
	}
}

// Fibers returns all fiber nodes in insertion order.
func (r *Registry) Fibers() []*model.ModuleNode {
	out := make([]*model.ModuleNode, 0, len(r.fiberOrder))
	for _, id := range r.fiberOrder {
		out = append(out, r.fibers[id])
	}
	return out
}

// Fiber looks up a fiber node by ID.
func (r *Registry) Fiber(id string) (*model.ModuleNode, bool) {
	node, ok := r.fibers[id]
	return node, ok
}

// Chains returns the chain nodes belonging to the given fiber, sorted by ID.
func (r *Registry) Chains(fiberID string) []*model.ModuleNode {
	var out []*model.ModuleNode
	for _, c := range r.chains {
		if c.ParentFiber == fiberID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ConfigDeps returns the per-fiber dependency declarations contributed by
// configuration, keyed by fiber ID, for the graph builder.
func (r *Registry) ConfigDeps() map[string][]string {
	out := make(map[string][]string, len(r.fibers))
	for id, node := range r.fibers {
		if len(node.ConfigDeps) > 0 {
			out[id] = node.ConfigDeps
		}
	}
	return out
}

// PackageManager returns the configured package manager, or nil.
func (r *Registry) PackageManager() *config.PackageManager {
	return r.pm
}

// RequiredTools resolves every tool referenced by any fiber or enabled
// chain into a ToolConfig. Tools referenced without a matching tool block
// get a bare config whose ID alone drives the default PATH-lookup strategy,
// so every referenced tool is checkable.
func (r *Registry) RequiredTools() map[string]model.ToolConfig {
	out := make(map[string]model.ToolConfig)

	addTool := func(name string) {
		if _, ok := out[name]; ok {
			return
		}
		if cfg, ok := r.tools[name]; ok {
			out[name] = model.ToolConfig{
				ID:              name,
				RequiredVersion: cfg.RequiredVersion,
				VersionCommand:  cfg.VersionCommand,
				CheckCommand:    cfg.CheckCommand,
				CheckPath:       cfg.CheckPath,
				Package:         cfg.Package,
				Expression:      cfg.Expression,
				Optional:        cfg.Optional,
			}
			return
		}
		out[name] = model.ToolConfig{ID: name}
	}

	for _, id := range r.fiberOrder {
		for _, name := range r.fibers[id].ToolDeps {
			addTool(name)
		}
		for _, chain := range r.Chains(id) {
			if !chain.Enabled {
				continue
			}
			for _, name := range chain.ToolDeps {
				addTool(name)
			}
		}
	}
	return out
}

// ModuleToolDeps returns the tool IDs that gate loadability of the given
// fiber: its own tool deps plus those of its enabled chains.
func (r *Registry) ModuleToolDeps(fiberID string) []string {
	node, ok := r.fibers[fiberID]
	if !ok {
		return nil
	}
	deps := append([]string(nil), node.ToolDeps...)
	for _, chain := range r.Chains(fiberID) {
		if chain.Enabled {
			deps = unionStrings(deps, chain.ToolDeps)
		}
	}
	return deps
}

// unionStrings appends the members of add that are not already present,
// preserving the order of first appearance.
func unionStrings(base []string, add []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; !ok {
			base = append(base, s)
			seen[s] = struct{}{}
		}
	}
	return base
}
