package graph

import (
	"fmt"
	"sort"
	"sync"
)

// Graph is an adjacency-list dependency graph over module IDs.
// An edge (from, to) means `from` requires `to` to load first.
// All operations on the graph are concurrency-safe.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
}

// node represents a single vertex. It is un-exported to enforce interaction
// through the public API using string IDs.
type node struct {
	id string
	// deps holds the nodes this node depends on (must load before it).
	deps map[string]*node
	// dependents holds the nodes that depend on this node.
	dependents map[string]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode adds a node with the given ID. Adding an existing ID is a no-op.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// HasNode reports whether the given ID is present in the graph.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return len(g.nodes)
}

// AddEdge records that `from` depends on `to`. Both endpoints must already
// be present; self-referential edges are rejected. Re-adding an existing
// edge is a no-op.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, from)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("source node not found: %s", from)
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("destination node not found: %s", to)
	}

	fromNode.deps[to] = toNode
	toNode.dependents[from] = fromNode
	return nil
}

// Dependencies returns the sorted IDs the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted IDs that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// HasPath reports whether `to` is reachable from `from` by following
// dependency edges. Used by the builder to skip redundant implicit edges.
func (g *Graph) HasPath(from, to string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[from]
	if !ok {
		return false
	}

	visited := make(map[string]bool)
	var visit func(n *node) bool
	visit = func(n *node) bool {
		if n.id == to {
			return true
		}
		if visited[n.id] {
			return false
		}
		visited[n.id] = true
		for _, dep := range n.deps {
			if visit(dep) {
				return true
			}
		}
		return false
	}

	for _, dep := range start.deps {
		if visit(dep) {
			return true
		}
	}
	return false
}

// sortedKeys returns map keys in lexicographic order, so callers iterating
// edges get deterministic results.
func sortedKeys(m map[string]*node) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
