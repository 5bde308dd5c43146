package recipe

import (
	"fmt"
	"strings"
)

// ValidationError lists every problem found in a recipe.
type ValidationError struct {
	Recipe   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid recipe %q:\n  - %s", e.Recipe, strings.Join(e.Problems, "\n  - "))
}

// Validate checks the recipe for configuration mistakes that would otherwise
// surface halfway through a run.
func (r *Recipe) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for i, name := range r.Drop {
		if name == "" {
			add("drop[%d]: empty column name", i)
		}
	}

	targets := make(map[string]bool)
	for i, b := range r.Bins {
		if b.Column == "" {
			add("bins[%d]: column is required", i)
		}
		if len(b.Bounds) < 2 {
			add("bins[%d] (%s): at least two bounds are required", i, b.Column)
		}
		for j := 1; j < len(b.Bounds); j++ {
			if !(b.Bounds[j] > b.Bounds[j-1]) {
				add("bins[%d] (%s): bounds must be strictly increasing", i, b.Column)
				break
			}
		}
		if len(b.Bounds) >= 2 && len(b.Labels) != len(b.Bounds)-1 {
			add("bins[%d] (%s): %d labels given, %d required", i, b.Column, len(b.Labels), len(b.Bounds)-1)
		}
		if t := b.TargetColumn(); t != "" {
			if targets[t] {
				add("bins[%d]: column %q is written by more than one rule", i, t)
			}
			targets[t] = true
		}
	}

	checkSpecs := func(stage string, specs []ColumnSpec) {
		seen := make(map[string]bool)
		for i, s := range specs {
			if s.Name == "" {
				add("%s[%d]: empty column name", stage, i)
				continue
			}
			if seen[s.Name] {
				add("%s[%d]: duplicate column %q", stage, i, s.Name)
			}
			seen[s.Name] = true
		}
	}
	checkSpecs("encode", r.Encode)
	checkSpecs("scale", r.Scale)

	if len(problems) > 0 {
		return &ValidationError{Recipe: r.Name, Problems: problems}
	}
	return nil
}
