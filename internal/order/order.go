package order

import (
	"context"
	"sort"

	"github.com/loomworks/loom/internal/ctxlog"
	"github.com/loomworks/loom/internal/graph"
	"github.com/loomworks/loom/internal/model"
)

// Options controls how the load order is computed.
type Options struct {
	// Reverse emits dependents before dependencies ("who needs me" views),
	// by running Kahn's algorithm over the transposed graph.
	Reverse bool
	// HideDisabled drops disabled nodes before ordering. The core fiber is
	// exempt and always considered enabled.
	HideDisabled bool
	// PrioritizeConfigured groups all Configured-provenance nodes before
	// all Discovered-only nodes; each group independently preserves the
	// topological order.
	PrioritizeConfigured bool
	// PinSpecialFibers places core first and dotfiles second, re-applied as
	// a post-pass after ordering.
	PinSpecialFibers bool
	// SortAlphabetically breaks ties among simultaneously-ready nodes by ID
	// instead of the default, which preserves relative input order.
	SortAlphabetically bool
}

// Order computes a total order over the given nodes. Every input node (that
// survives HideDisabled) appears exactly once. Cycles are broken by
// force-emitting the lexicographically smallest blocked node; each forced
// break is recorded as a warning. Identical inputs always produce identical
// output.
func Order(ctx context.Context, nodes []*model.ModuleNode, g *graph.Graph, opts Options) ([]string, []model.Warning) {
	logger := ctxlog.FromContext(ctx)

	active := filterNodes(nodes, opts)
	logger.Debug("Ordering modules.", "input", len(nodes), "active", len(active))

	k := newKahn(active, g, opts)
	result, warnings := k.run()

	if opts.PrioritizeConfigured {
		result = partitionByProvenance(result, active)
	}
	if opts.PinSpecialFibers {
		result = pinSpecialFibers(result)
	}

	logger.Debug("Ordering complete.", "emitted", len(result), "cycle_breaks", len(warnings))
	return result, warnings
}

// filterNodes applies HideDisabled, preserving input order. Core is exempt.
func filterNodes(nodes []*model.ModuleNode, opts Options) []*model.ModuleNode {
	if !opts.HideDisabled {
		return nodes
	}
	out := make([]*model.ModuleNode, 0, len(nodes))
	for _, n := range nodes {
		if n.Enabled || n.ID == model.CoreFiberID {
			out = append(out, n)
		}
	}
	return out
}

// kahn holds the mutable state of one Kahn's-algorithm run.
type kahn struct {
	g    *graph.Graph
	opts Options

	ids      []string
	inputIdx map[string]int
	inSet    map[string]bool
	indeg    map[string]int
	emitted  map[string]bool
	ready    []string
}

func newKahn(nodes []*model.ModuleNode, g *graph.Graph, opts Options) *kahn {
	k := &kahn{
		g:        g,
		opts:     opts,
		inputIdx: make(map[string]int, len(nodes)),
		inSet:    make(map[string]bool, len(nodes)),
		indeg:    make(map[string]int, len(nodes)),
		emitted:  make(map[string]bool, len(nodes)),
	}
	for i, n := range nodes {
		if k.inSet[n.ID] {
			continue // duplicate IDs in input collapse to the first
		}
		k.ids = append(k.ids, n.ID)
		k.inputIdx[n.ID] = i
		k.inSet[n.ID] = true
	}
	for _, id := range k.ids {
		k.indeg[id] = len(k.prerequisites(id))
	}
	for _, id := range k.ids {
		if k.indeg[id] == 0 {
			k.pushReady(id)
		}
	}
	return k
}

// prerequisites returns the active nodes that must be emitted before id:
// its dependencies, or its dependents when the order is reversed.
func (k *kahn) prerequisites(id string) []string {
	return k.activeNeighbors(id, !k.opts.Reverse)
}

// unlocks returns the active nodes whose in-degree drops when id is emitted.
func (k *kahn) unlocks(id string) []string {
	return k.activeNeighbors(id, k.opts.Reverse)
}

func (k *kahn) activeNeighbors(id string, deps bool) []string {
	var neighbors []string
	var err error
	if deps {
		neighbors, err = k.g.Dependencies(id)
	} else {
		neighbors, err = k.g.Dependents(id)
	}
	if err != nil {
		return nil // node absent from the graph has no edges
	}
	out := neighbors[:0]
	for _, n := range neighbors {
		if k.inSet[n] {
			out = append(out, n)
		}
	}
	return out
}

// run repeatedly emits ready nodes; when none remain but unplaced nodes do,
// it breaks the cycle at the lexicographically smallest blocked node.
func (k *kahn) run() ([]string, []model.Warning) {
	result := make([]string, 0, len(k.ids))
	var warnings []model.Warning

	for len(result) < len(k.ids) {
		if len(k.ready) == 0 {
			id, unsatisfied := k.pickCycleBreak()
			warnings = append(warnings, model.CycleBreak(id, unsatisfied))
			result = append(result, id)
			k.emit(id)
			continue
		}

		id := k.ready[0]
		k.ready = k.ready[1:]
		result = append(result, id)
		k.emit(id)
	}

	return result, warnings
}

// emit marks id placed and unlocks any dependents that became ready.
func (k *kahn) emit(id string) {
	k.emitted[id] = true
	for _, u := range k.unlocks(id) {
		if k.emitted[u] {
			continue
		}
		k.indeg[u]--
		if k.indeg[u] == 0 {
			k.pushReady(u)
		}
	}
}

// pickCycleBreak selects the lexicographically smallest unplaced node and
// reports its still-unsatisfied prerequisites (the edges being cut).
func (k *kahn) pickCycleBreak() (string, []string) {
	var pick string
	for _, id := range k.ids {
		if k.emitted[id] {
			continue
		}
		if pick == "" || id < pick {
			pick = id
		}
	}

	var unsatisfied []string
	for _, dep := range k.prerequisites(pick) {
		if !k.emitted[dep] {
			unsatisfied = append(unsatisfied, dep)
		}
	}
	sort.Strings(unsatisfied)
	return pick, unsatisfied
}

// pushReady inserts id into the ready queue, keeping it sorted by the
// configured tie-break key so the pop order is deterministic.
func (k *kahn) pushReady(id string) {
	less := func(a, b string) bool { return k.inputIdx[a] < k.inputIdx[b] }
	if k.opts.SortAlphabetically {
		less = func(a, b string) bool { return a < b }
	}
	i := sort.Search(len(k.ready), func(i int) bool { return less(id, k.ready[i]) })
	k.ready = append(k.ready, "")
	copy(k.ready[i+1:], k.ready[i:])
	k.ready[i] = id
}

// partitionByProvenance stably splits the order into Configured nodes
// followed by Discovered-only nodes.
func partitionByProvenance(order []string, nodes []*model.ModuleNode) []string {
	provenance := make(map[string]model.Provenance, len(nodes))
	for _, n := range nodes {
		provenance[n.ID] = n.Provenance
	}

	out := make([]string, 0, len(order))
	for _, id := range order {
		if provenance[id] == model.Configured {
			out = append(out, id)
		}
	}
	for _, id := range order {
		if provenance[id] != model.Configured {
			out = append(out, id)
		}
	}
	return out
}

// pinSpecialFibers extracts core and dotfiles from the order and re-prepends
// them (core first, dotfiles second), preserving the relative order of the
// remainder.
func pinSpecialFibers(order []string) []string {
	var pinned []string
	rest := make([]string, 0, len(order))

	for _, special := range []string{model.CoreFiberID, model.DotfilesFiberID} {
		for _, id := range order {
			if id == special {
				pinned = append(pinned, id)
				break
			}
		}
	}
	for _, id := range order {
		if id != model.CoreFiberID && id != model.DotfilesFiberID {
			rest = append(rest, id)
		}
	}
	return append(pinned, rest...)
}
