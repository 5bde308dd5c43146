package config

import (
	"fmt"
	"slices"
	"sort"

	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/pkg/adapter"
)

// Validate checks if the configuration is valid. It does not touch the
// filesystem so help and listing commands work without an input file.
func (c *Config) Validate() error {
	if c.OutputFormat != "" && !slices.Contains(output.Modes, c.OutputFormat) {
		return fmt.Errorf("invalid format %q\nHint: Use one of %v", c.OutputFormat, output.Modes)
	}

	if c.Loader == "" {
		return fmt.Errorf("loader is required")
	}
	if !adapter.IsRegistered(c.Loader) {
		return &adapter.UnknownLoaderError{Type: c.Loader, Available: adapter.ListLoaders()}
	}

	names := make([]string, 0, len(c.Recipes))
	for name := range c.Recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r := c.Recipes[name]
		r.Name = name
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
