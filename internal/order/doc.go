// Package order computes a deterministic topological load order for module
// nodes over a dependency graph. Cycles never abort an ordering: they are
// broken deterministically and surfaced as warnings, so every input yields
// a total order.
package order
