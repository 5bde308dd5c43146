// Package config provides configuration management for the LeapPrep CLI.
//
// Values come from defaults, leapprep.yaml, LEAPPREP_* environment variables
// and command-line flags, in increasing order of precedence.
package config

import (
	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
)

// Config holds all CLI configuration options.
type Config struct {
	Input        string                   `koanf:"input"`
	Output       string                   `koanf:"output"`
	Recipe       string                   `koanf:"recipe"`
	Loader       string                   `koanf:"loader"`
	NAValues     []string                 `koanf:"na_values"`
	LoaderParams map[string]any           `koanf:"loader_params"`
	Watch        bool                     `koanf:"watch"`
	Verbose      bool                     `koanf:"verbose"`
	OutputFormat string                   `koanf:"format"`
	Recipes      map[string]recipe.Recipe `koanf:"recipes"`

	// ConfigDir is the directory relative paths from the config file are
	// resolved against. Empty when no config file was found.
	ConfigDir string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultLoader = "csv"
	DefaultRecipe = recipe.Default
	DefaultOutput = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// LoaderConfig returns the adapter configuration for the configured loader.
func (c *Config) LoaderConfig() adapter.Config {
	return adapter.Config{
		Type:     c.Loader,
		NAValues: c.NAValues,
		Params:   c.LoaderParams,
	}
}

// Catalog returns the recipe catalog including recipes declared in the
// config file.
func (c *Config) Catalog() *recipe.Catalog {
	return recipe.NewCatalog(c.Recipes)
}
