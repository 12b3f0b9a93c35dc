package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and translates it into
	// the format-agnostic model. Paths that do not exist are skipped; a
	// parse failure in an existing file is an error.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
