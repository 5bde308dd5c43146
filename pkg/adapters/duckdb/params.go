package duckdb

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific loader configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Settings to apply at session level (e.g., memory_limit, threads)
	Settings map[string]string `mapstructure:"settings"`

	// SampleSize is the number of rows sniffed for type detection; -1 (the
	// default) scans the whole file.
	SampleSize int `mapstructure:"sample_size"`

	// Delimiter overrides dialect sniffing.
	Delimiter string `mapstructure:"delim"`
}

// ParseParams decodes loader params. Nil or empty params yield defaults.
func ParseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid duckdb params: %w", err)
	}
	return p, nil
}
