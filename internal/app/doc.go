// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary lifecycle: load configuration
// and module manifests, build the dependency graph, order it, check tool
// availability, and render the requested output.
package app
