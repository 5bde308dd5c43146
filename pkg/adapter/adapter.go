// Package adapter provides the loader contract used by LeapPrep to read a
// dataset into a core.Table.
//
// Concrete loaders live in pkg/adapters/ subdirectories and register
// themselves with the registry in their init() functions.
package adapter

import (
	"context"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// Config holds loader configuration.
type Config struct {
	// Type selects the loader (csv, duckdb).
	Type string

	// NAValues are tokens read as missing values in addition to the empty
	// string. Nil means core.DefaultNAValues.
	NAValues []string

	// Params holds loader-specific settings.
	Params map[string]any
}

// Loader reads a tabular file into memory.
type Loader interface {
	// Name returns the registered loader name.
	Name() string

	// Load parses the file at path. Column types are inferred from content.
	Load(ctx context.Context, path string) (*core.Table, error)
}

// EffectiveNAValues returns the configured NA tokens or the defaults.
func (c Config) EffectiveNAValues() []string {
	if c.NAValues == nil {
		return core.DefaultNAValues
	}
	return c.NAValues
}
