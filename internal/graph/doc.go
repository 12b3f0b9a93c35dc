// Package graph implements the module dependency graph and its builder.
// Edges are merged from three sources: workspace configuration, manifest
// self-declarations, and the implicit edge every non-core module has on the
// core fiber. Dangling edges are dropped with a warning, never an error.
package graph
