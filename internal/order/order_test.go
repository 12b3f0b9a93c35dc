package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loom/internal/graph"
	"github.com/loomworks/loom/internal/model"
)

// buildNodes constructs enabled fiber nodes with the given self-declared
// deps and returns them alongside the built graph.
func buildNodes(t *testing.T, deps map[string][]string, ids ...string) ([]*model.ModuleNode, *graph.Graph) {
	t.Helper()

	nodes := make([]*model.ModuleNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, &model.ModuleNode{
			ID:       id,
			Kind:     model.Fiber,
			Enabled:  true,
			SelfDeps: deps[id],
		})
	}
	g, warnings := graph.Build(context.Background(), nodes, nil)
	require.Empty(t, warnings)
	return nodes, g
}

// assertPrecedes fails unless a appears before b in order.
func assertPrecedes(t *testing.T, order []string, a, b string) {
	t.Helper()
	ia, ib := -1, -1
	for i, id := range order {
		if id == a {
			ia = i
		}
		if id == b {
			ib = i
		}
	}
	require.NotEqual(t, -1, ia, "%q missing from order %v", a, order)
	require.NotEqual(t, -1, ib, "%q missing from order %v", b, order)
	assert.Less(t, ia, ib, "%q must precede %q in %v", a, b, order)
}

func TestOrder_AcyclicDependenciesFirst(t *testing.T) {
	t.Parallel()

	nodes, g := buildNodes(t, map[string][]string{
		"app": {"dev"},
		"dev": {"core"},
	}, "app", "dev", "core")

	order, warnings := Order(context.Background(), nodes, g, Options{})
	require.Empty(t, warnings)
	assert.Equal(t, []string{"core", "dev", "app"}, order)
}

func TestOrder_ReverseEmitsDependentsFirst(t *testing.T) {
	t.Parallel()

	nodes, g := buildNodes(t, map[string][]string{
		"app": {"dev"},
		"dev": {"base"},
	}, "app", "dev", "base")

	order, warnings := Order(context.Background(), nodes, g, Options{Reverse: true})
	require.Empty(t, warnings)
	assert.Equal(t, []string{"app", "dev", "base"}, order)
}

func TestOrder_PureCycleTerminates(t *testing.T) {
	t.Parallel()

	nodes, g := buildNodes(t, map[string][]string{
		"a": {"c"},
		"b": {"a"},
		"c": {"b"},
	}, "a", "b", "c")

	order, warnings := Order(context.Background(), nodes, g, Options{})

	assert.ElementsMatch(t, []string{"a", "b", "c"}, order, "every node appears exactly once")
	require.NotEmpty(t, warnings)
	assert.Equal(t, model.WarnCycleBreak, warnings[0].Kind)
	assert.Contains(t, []string{"a", "b", "c"}, warnings[0].Subject)
	// The break point is deterministic: the smallest id in the cycle.
	assert.Equal(t, "a", warnings[0].Subject)
	assert.Equal(t, []string{"c"}, warnings[0].Related)
}

func TestOrder_CycleWithAcyclicTail(t *testing.T) {
	t.Parallel()

	// x and y form a 2-cycle; z depends on y and must still come after it.
	nodes, g := buildNodes(t, map[string][]string{
		"x": {"y"},
		"y": {"x"},
		"z": {"y"},
	}, "x", "y", "z")

	order, warnings := Order(context.Background(), nodes, g, Options{})

	assert.Len(t, order, 3)
	require.Len(t, warnings, 1)
	assertPrecedes(t, order, "y", "z")
}

func TestOrder_PinSpecialFibers(t *testing.T) {
	t.Parallel()

	nodes, g := buildNodes(t, map[string][]string{
		"app": {"dotfiles"},
	}, "zsh", "app", "dotfiles", "core")

	order, warnings := Order(context.Background(), nodes, g, Options{PinSpecialFibers: true})
	require.Empty(t, warnings)

	require.GreaterOrEqual(t, len(order), 2)
	assert.Equal(t, "core", order[0], "core is always first")
	assert.Equal(t, "dotfiles", order[1], "dotfiles is always second")
	assert.ElementsMatch(t, []string{"zsh", "app", "core", "dotfiles"}, order)
}

func TestOrder_HideDisabled(t *testing.T) {
	t.Parallel()

	nodes, g := buildNodes(t, nil, "core", "a", "b", "c")
	nodes[0].Enabled = false // core: exempt, stays
	nodes[2].Enabled = false // b: dropped

	order, warnings := Order(context.Background(), nodes, g, Options{HideDisabled: true})
	require.Empty(t, warnings)
	assert.Equal(t, []string{"core", "a", "c"}, order)
}

func TestOrder_PrioritizeConfigured(t *testing.T) {
	t.Parallel()

	nodes, g := buildNodes(t, map[string][]string{
		"b": {"a"},
		"d": {"c"},
	}, "a", "b", "c", "d")
	// a and b are discovered-only; c and d are configured.
	nodes[2].Provenance = model.Configured
	nodes[3].Provenance = model.Configured

	order, warnings := Order(context.Background(), nodes, g, Options{PrioritizeConfigured: true})
	require.Empty(t, warnings)

	assert.Equal(t, []string{"c", "d", "a", "b"}, order,
		"configured group first, each group preserving topological order")
}

func TestOrder_TieBreaks(t *testing.T) {
	t.Parallel()

	t.Run("default preserves input order", func(t *testing.T) {
		t.Parallel()

		nodes, g := buildNodes(t, nil, "zeta", "mid", "alpha")
		order, _ := Order(context.Background(), nodes, g, Options{})
		assert.Equal(t, []string{"zeta", "mid", "alpha"}, order)
	})

	t.Run("alphabetical on request", func(t *testing.T) {
		t.Parallel()

		nodes, g := buildNodes(t, nil, "zeta", "mid", "alpha")
		order, _ := Order(context.Background(), nodes, g, Options{SortAlphabetically: true})
		assert.Equal(t, []string{"alpha", "mid", "zeta"}, order)
	})
}

func TestOrder_Deterministic(t *testing.T) {
	t.Parallel()

	// Includes a cycle so repeated tie-breaking is exercised too.
	deps := map[string][]string{
		"a": {"b"},
		"b": {"a"},
		"m": {"a"},
		"n": {"m", "q"},
		"q": {},
	}
	nodes, g := buildNodes(t, deps, "q", "n", "m", "b", "a")

	first, firstWarnings := Order(context.Background(), nodes, g, Options{})
	for i := 0; i < 20; i++ {
		again, againWarnings := Order(context.Background(), nodes, g, Options{})
		require.Equal(t, first, again)
		require.Equal(t, firstWarnings, againWarnings)
	}
}

func TestOrder_EveryNodeExactlyOnce(t *testing.T) {
	t.Parallel()

	deps := map[string][]string{
		"a": {"b", "c"},
		"b": {"c"},
		"c": {"a"}, // cycle a->b->c->a plus shortcut
		"d": {"a"},
		"e": {},
	}
	nodes, g := buildNodes(t, deps, "a", "b", "c", "d", "e")

	order, _ := Order(context.Background(), nodes, g, Options{})
	assert.Len(t, order, 5)
	seen := make(map[string]int)
	for _, id := range order {
		seen[id]++
	}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, 1, seen[id], "node %q must appear exactly once", id)
	}
}
