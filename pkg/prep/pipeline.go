package prep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
)

// ErrNoOutput is returned when neither the caller nor the recipe names an
// output path.
var ErrNoOutput = errors.New("output path is required")

// Options configure a single preprocessing run.
type Options struct {
	// Input is the CSV file to read.
	Input string
	// Output is the CSV file to write. Empty falls back to Recipe.Output.
	Output string
	// Recipe selects the columns each stage works on.
	Recipe *recipe.Recipe
}

// Result describes a completed run.
type Result struct {
	Table        *core.Table
	Encoders     *EncoderSet
	Scales       []ScaleStats
	InputRows    int
	InputCols    int
	OutputPath   string
	EncodersPath string // empty when the recipe does not write encoders
}

// Preprocessor runs recipes against files.
type Preprocessor struct {
	loader adapter.Loader
	logger *slog.Logger
}

// New creates a preprocessor reading input with loader.
// A nil logger discards log output.
func New(loader adapter.Loader, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Preprocessor{loader: loader, logger: logger}
}

// ResolveOutput returns the output path a run with opts writes to.
func ResolveOutput(opts Options) (string, error) {
	if opts.Output != "" {
		return opts.Output, nil
	}
	if opts.Recipe != nil && opts.Recipe.Output != "" {
		return opts.Recipe.Output, nil
	}
	name := ""
	if opts.Recipe != nil {
		name = opts.Recipe.Name
	}
	return "", fmt.Errorf("%w: recipe %q has no fixed output, pass --output", ErrNoOutput, name)
}

// Preprocess loads the input, transforms it and persists the result.
// Files are written only after every stage has succeeded.
func (p *Preprocessor) Preprocess(ctx context.Context, opts Options) (*Result, error) {
	if opts.Recipe == nil {
		return nil, fmt.Errorf("recipe is required")
	}
	outputPath, err := ResolveOutput(opts)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("loading input", "path", opts.Input, "loader", p.loader.Name())
	in, err := p.loader.Load(ctx, opts.Input)
	if err != nil {
		return nil, err
	}

	res, err := p.Transform(ctx, in, opts.Recipe)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("writing output", "path", outputPath)
	if err := WriteCSV(outputPath, res.Table); err != nil {
		return nil, err
	}
	res.OutputPath = outputPath

	if opts.Recipe.WriteEncoders {
		res.EncodersPath = EncodersPath(outputPath)
		p.logger.Debug("writing encoders", "path", res.EncodersPath, "columns", res.Encoders.Len())
		if err := WriteEncoders(res.EncodersPath, res.Encoders); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// Transform applies the recipe stages to an in-memory table without touching
// the filesystem.
func (p *Preprocessor) Transform(ctx context.Context, in *core.Table, r *recipe.Recipe) (*Result, error) {
	res := &Result{InputRows: in.NumRows(), InputCols: in.NumCols()}

	dropped := Drop(in, r.Drop)
	p.logger.Debug("dropped columns", "before", in.NumCols(), "after", dropped.NumCols())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, rule := range r.Bins {
		if rule.Optional && !dropped.Has(rule.Column) {
			p.logger.Debug("skipping optional bin rule", "column", rule.Column)
		}
	}
	binned, err := Bin(dropped, r.Bins)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	encoded, encoders, err := Encode(binned, r.Encode)
	if err != nil {
		return nil, err
	}
	for _, col := range encoders.Columns() {
		enc, _ := encoders.Get(col)
		p.logger.Debug("encoded column", "column", col, "classes", enc.Len())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scaled, stats, err := Scale(encoded, r.Scale)
	if err != nil {
		return nil, err
	}
	for _, st := range stats {
		p.logger.Debug("scaled column", "column", st.Column, "mean", st.Mean, "std", st.Std)
		if st.Std == 0 {
			p.logger.Warn("constant column scaled to undefined values", "column", st.Column)
		}
	}

	res.Table = scaled
	res.Encoders = encoders
	res.Scales = stats
	return res, nil
}
