// Package registry holds the in-memory collection of module records for a
// single application instance. It merges workspace-configured declarations
// with discovered module manifests into the ModuleNode set consumed by the
// graph builder and resolves which tools those modules require.
package registry
