package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loom/internal/model"
)

func fiberNodes(ids ...string) []*model.ModuleNode {
	nodes := make([]*model.ModuleNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, &model.ModuleNode{ID: id, Kind: model.Fiber, Enabled: true})
	}
	return nodes
}

func TestBuild_UnionOfSources(t *testing.T) {
	t.Parallel()

	nodes := fiberNodes("a", "b", "c")
	nodes[0].SelfDeps = []string{"b"}
	configDeps := map[string][]string{"a": {"c", "b"}}

	g, warnings := Build(context.Background(), nodes, configDeps)
	require.Empty(t, warnings)

	deps, err := g.Dependencies("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, deps, "deps from both sources merged without duplication")
}

func TestBuild_DanglingDependencyDropped(t *testing.T) {
	t.Parallel()

	nodes := fiberNodes("a")
	nodes[0].SelfDeps = []string{"ghost"}

	g, warnings := Build(context.Background(), nodes, nil)

	deps, err := g.Dependencies("a")
	require.NoError(t, err)
	assert.Empty(t, deps)

	require.Len(t, warnings, 1)
	assert.Equal(t, model.WarnDanglingDependency, warnings[0].Kind)
	assert.Equal(t, "a", warnings[0].Subject)
	assert.Equal(t, []string{"ghost"}, warnings[0].Related)
}

func TestBuild_ImplicitCoreEdge(t *testing.T) {
	t.Parallel()

	t.Run("added when missing", func(t *testing.T) {
		t.Parallel()

		g, warnings := Build(context.Background(), fiberNodes("core", "dev"), nil)
		require.Empty(t, warnings)

		deps, err := g.Dependencies("dev")
		require.NoError(t, err)
		assert.Equal(t, []string{"core"}, deps)
	})

	t.Run("skipped when a path already exists", func(t *testing.T) {
		t.Parallel()

		nodes := fiberNodes("core", "base", "app")
		nodes[1].SelfDeps = []string{"core"}
		nodes[2].SelfDeps = []string{"base"}

		g, warnings := Build(context.Background(), nodes, nil)
		require.Empty(t, warnings)

		// app reaches core through base; no direct edge is inserted.
		deps, err := g.Dependencies("app")
		require.NoError(t, err)
		assert.Equal(t, []string{"base"}, deps)
	})

	t.Run("absent core means no implicit edges", func(t *testing.T) {
		t.Parallel()

		g, warnings := Build(context.Background(), fiberNodes("a", "b"), nil)
		require.Empty(t, warnings)

		deps, err := g.Dependencies("a")
		require.NoError(t, err)
		assert.Empty(t, deps)
	})
}

func TestBuild_SelfDependencyIgnored(t *testing.T) {
	t.Parallel()

	nodes := fiberNodes("a")
	nodes[0].SelfDeps = []string{"a"}

	g, warnings := Build(context.Background(), nodes, nil)
	assert.Empty(t, warnings)

	deps, err := g.Dependencies("a")
	require.NoError(t, err)
	assert.Empty(t, deps)
}
