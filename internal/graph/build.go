package graph

import (
	"context"

	"github.com/loomworks/loom/internal/ctxlog"
	"github.com/loomworks/loom/internal/model"
)

// Build constructs the dependency graph for the given module nodes.
//
// For each module, its self-declared manifest dependencies and any
// configuration-declared dependencies (configDeps, keyed by module ID) are
// unioned; neither source overrides the other. Edges whose target is absent
// from the node set are dropped and recorded as dangling-dependency
// warnings. Finally, if a node named `core` is present, every other node
// gains an implicit edge to it unless it already reaches core through an
// existing path.
func Build(ctx context.Context, nodes []*model.ModuleNode, configDeps map[string][]string) (*Graph, []model.Warning) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "node_count", len(nodes))

	g := New()
	var warnings []model.Warning

	// First pass: create all nodes.
	for _, n := range nodes {
		g.AddNode(n.ID)
	}

	// Second pass: link declared dependencies from both sources.
	for _, n := range nodes {
		deps := unionDeps(n.SelfDeps, configDeps[n.ID])
		for _, dep := range deps {
			if dep == n.ID {
				// A module depending on itself carries no information.
				continue
			}
			if !g.HasNode(dep) {
				logger.Debug("Dropping dangling dependency.", "from", n.ID, "to", dep)
				warnings = append(warnings, model.DanglingDependency(n.ID, dep))
				continue
			}
			if err := g.AddEdge(n.ID, dep); err != nil {
				// Both endpoints were just verified; nothing recoverable
				// remains, so record it like any other dropped edge.
				warnings = append(warnings, model.DanglingDependency(n.ID, dep))
			}
		}
	}

	// Third pass: the implicit core rule.
	if g.HasNode(model.CoreFiberID) {
		for _, n := range nodes {
			if n.ID == model.CoreFiberID {
				continue
			}
			if g.HasPath(n.ID, model.CoreFiberID) {
				continue
			}
			logger.Debug("Adding implicit core dependency.", "from", n.ID)
			_ = g.AddEdge(n.ID, model.CoreFiberID)
		}
	}

	logger.Debug("Build: graph construction complete.",
		"node_count", g.Len(), "warnings", len(warnings))
	return g, warnings
}

// unionDeps merges the two dependency declarations, first-appearance order,
// without duplicates.
func unionDeps(selfDeps, cfgDeps []string) []string {
	out := make([]string, 0, len(selfDeps)+len(cfgDeps))
	seen := make(map[string]struct{}, len(selfDeps)+len(cfgDeps))
	for _, list := range [][]string{selfDeps, cfgDeps} {
		for _, dep := range list {
			if _, ok := seen[dep]; !ok {
				out = append(out, dep)
				seen[dep] = struct{}{}
			}
		}
	}
	return out
}
