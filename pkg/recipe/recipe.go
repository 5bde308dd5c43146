// Package recipe defines the configuration that drives a preprocessing run:
// which columns are dropped, binned, label-encoded and scaled, and where the
// result goes. Built-in recipes cover the sleep-quality dataset variants;
// more can be declared in leapprep.yaml.
package recipe

// ColumnSpec names a column taking part in a stage. The stage is given by the
// recipe list holding the spec.
type ColumnSpec struct {
	Name string `koanf:"name" yaml:"name"`
	// Optional columns are skipped when absent instead of failing the run.
	Optional bool `koanf:"optional" yaml:"optional,omitempty"`
}

// BinningRule buckets a numeric column into ordered labels. Bins are
// (lo, hi] except the first, which also includes its lower boundary.
type BinningRule struct {
	Column string `koanf:"column" yaml:"column"`
	// Target names the output column; empty replaces Column in place.
	Target   string    `koanf:"target" yaml:"target,omitempty"`
	Bounds   []float64 `koanf:"bounds" yaml:"bounds,flow"`
	Labels   []string  `koanf:"labels" yaml:"labels,flow"`
	Optional bool      `koanf:"optional" yaml:"optional,omitempty"`
}

// TargetColumn returns the name of the column the rule writes.
func (r BinningRule) TargetColumn() string {
	if r.Target != "" {
		return r.Target
	}
	return r.Column
}

// Recipe is a complete preprocessing configuration.
type Recipe struct {
	Name        string        `koanf:"-" yaml:"-"`
	Description string        `koanf:"description" yaml:"description,omitempty"`
	Drop        []string      `koanf:"drop" yaml:"drop,omitempty"`
	Bins        []BinningRule `koanf:"bins" yaml:"bins,omitempty"`
	Encode      []ColumnSpec  `koanf:"encode" yaml:"encode,omitempty"`
	Scale       []ColumnSpec  `koanf:"scale" yaml:"scale,omitempty"`
	// Output is used when no output path is given on the command line.
	Output string `koanf:"output" yaml:"output,omitempty"`
	// WriteEncoders controls whether the encoder mapping file is written.
	WriteEncoders bool `koanf:"write_encoders" yaml:"write_encoders"`
}

// Columns returns the names of specs, in order.
func Columns(specs []ColumnSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

// Required returns plain (non-optional) specs for the given names.
func Required(names ...string) []ColumnSpec {
	specs := make([]ColumnSpec, len(names))
	for i, n := range names {
		specs[i] = ColumnSpec{Name: n}
	}
	return specs
}

// Optional returns optional specs for the given names.
func Optional(names ...string) []ColumnSpec {
	specs := make([]ColumnSpec, len(names))
	for i, n := range names {
		specs[i] = ColumnSpec{Name: n, Optional: true}
	}
	return specs
}
