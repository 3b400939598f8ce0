package config

import "context"

// Loader is the interface for a format-specific definition loader.
type Loader interface {
	// Load reads definitions from the given files or directories and
	// translates them into the format-agnostic model. Paths that do not
	// exist are skipped.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
