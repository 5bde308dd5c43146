package commands

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/prep"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Preprocess a CSV file",
		Long: `Load a CSV file, drop unused columns, bin numeric columns into levels,
label-encode categorical columns and standard-scale numeric columns.

The transformed table is written to --output. Recipes that keep encoders also
write <output>_encoders.json next to it.`,
		Example: `  # Preprocess with the default recipe
  leapprep run -i sleep.csv -o processed/sleep.csv

  # Use a different recipe and the DuckDB loader
  leapprep run -i sleep.csv -o out.csv --recipe sleep-basic --loader duckdb

  # Re-run whenever the input changes
  leapprep run -i sleep.csv -o out.csv --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunPreprocess(cmd)
		},
	}

	AddRunFlags(cmd)
	return cmd
}

// AddRunFlags registers the preprocessing flags on cmd. The root command
// carries them too so `leapprep -i in.csv -o out.csv` works without `run`.
func AddRunFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringP("input", "i", "", "Input CSV file")
	fs.StringP("output", "o", "", "Output CSV file (default: the recipe's fixed output)")
	fs.String("recipe", "", "Recipe to apply (default: "+recipe.Default+")")
	fs.String("loader", "", "Input loader (csv|duckdb)")
	fs.Bool("watch", false, "Re-run whenever the input file changes")

	_ = cmd.MarkFlagFilename("input", "csv")
	_ = cmd.MarkFlagFilename("output", "csv")
	_ = cmd.RegisterFlagCompletionFunc("recipe", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return getConfig().Catalog().Names(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("loader", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListLoaders(), cobra.ShellCompDirectiveNoFileComp
	})
}

// RunFlagsChanged reports whether any preprocessing flag was set.
func RunFlagsChanged(fs *pflag.FlagSet) bool {
	for _, name := range []string{"input", "output", "recipe", "loader", "watch"} {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

// RunPreprocess runs the configured recipe once, or keeps re-running it in
// watch mode.
func RunPreprocess(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	j, err := newJob(cc)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cc.Cfg.Watch {
		return watchInput(ctx, cc, j)
	}
	_, err = j.run(ctx)
	return err
}

// job is a resolved preprocessing run that can be executed repeatedly.
type job struct {
	cc     *CommandContext
	recipe *recipe.Recipe
	loader adapter.Loader
	opts   prep.Options
}

func newJob(cc *CommandContext) (*job, error) {
	cfg := cc.Cfg
	if cfg.Input == "" {
		return nil, fmt.Errorf("input path is required\nHint: Pass --input or set input in leapprep.yaml")
	}

	r, err := cfg.Catalog().Get(cfg.Recipe)
	if err != nil {
		return nil, err
	}

	loader, err := adapter.NewLoader(cfg.LoaderConfig(), cc.Logger)
	if err != nil {
		return nil, err
	}

	opts := prep.Options{Input: cfg.Input, Output: cfg.Output, Recipe: r}
	if _, err := prep.ResolveOutput(opts); err != nil {
		return nil, err
	}

	return &job{cc: cc, recipe: r, loader: loader, opts: opts}, nil
}

func (j *job) run(ctx context.Context) (*prep.Result, error) {
	runID := uuid.New().String()
	logger := j.cc.Logger.With("run_id", runID, "recipe", j.recipe.Name)
	start := time.Now()

	logger.Info("preprocessing started", "input", j.opts.Input, "loader", j.loader.Name())
	res, err := prep.New(j.loader, logger).Preprocess(ctx, j.opts)
	if err != nil {
		logger.Error("preprocessing failed", "error", err)
		return nil, err
	}
	elapsed := time.Since(start)
	logger.Info("preprocessing finished", "rows", res.Table.NumRows(), "columns", res.Table.NumCols(), "elapsed", elapsed)

	return res, renderRunResult(j.cc, newRunSummary(runID, j.recipe.Name, j.opts.Input, res, elapsed))
}

// runSummary is the JSON form of a completed run.
type runSummary struct {
	RunID        string           `json:"run_id"`
	Recipe       string           `json:"recipe"`
	Input        string           `json:"input"`
	Output       string           `json:"output"`
	Encoders     string           `json:"encoders,omitempty"`
	InputRows    int              `json:"input_rows"`
	InputColumns int              `json:"input_columns"`
	Rows         int              `json:"rows"`
	Columns      int              `json:"columns"`
	Encoded      []encodedSummary `json:"encoded"`
	Scaled       []scaledSummary  `json:"scaled"`
	DurationMS   int64            `json:"duration_ms"`
}

type encodedSummary struct {
	Column  string `json:"column"`
	Classes int    `json:"classes"`
}

// Mean and Std are nil when undefined.
type scaledSummary struct {
	Column string   `json:"column"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
}

func newRunSummary(runID, recipeName, input string, res *prep.Result, elapsed time.Duration) runSummary {
	s := runSummary{
		RunID:        runID,
		Recipe:       recipeName,
		Input:        input,
		Output:       res.OutputPath,
		Encoders:     res.EncodersPath,
		InputRows:    res.InputRows,
		InputColumns: res.InputCols,
		Rows:         res.Table.NumRows(),
		Columns:      res.Table.NumCols(),
		Encoded:      []encodedSummary{},
		Scaled:       []scaledSummary{},
		DurationMS:   elapsed.Milliseconds(),
	}
	for _, col := range res.Encoders.Columns() {
		enc, _ := res.Encoders.Get(col)
		s.Encoded = append(s.Encoded, encodedSummary{Column: col, Classes: enc.Len()})
	}
	for _, st := range res.Scales {
		s.Scaled = append(s.Scaled, scaledSummary{Column: st.Column, Mean: finite(st.Mean), Std: finite(st.Std)})
	}
	return s
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// SummaryLine is the one-line report of a completed run.
func SummaryLine(rows, cols int, path string) string {
	return fmt.Sprintf("Preprocessing complete. %d rows × %d columns saved to %s", rows, cols, path)
}

func renderRunResult(cc *CommandContext, s runSummary) error {
	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(s)
	case output.ModeMarkdown:
		r.Println(SummaryLine(s.Rows, s.Columns, s.Output))
		if s.Encoders != "" {
			r.Println("Encoders saved to " + s.Encoders)
		}
		if cc.Cfg.Verbose {
			r.Println("")
			r.Println(output.FormatTable([]string{"Column", "Stage", "Detail"}, detailRows(s)))
		}
	default:
		r.Success(SummaryLine(s.Rows, s.Columns, s.Output))
		if s.Encoders != "" {
			r.Muted("Encoders saved to " + s.Encoders)
		}
		if cc.Cfg.Verbose {
			t := table.NewWriter()
			t.SetOutputMirror(r.Writer())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Column", "Stage", "Detail"})
			for _, row := range detailRows(s) {
				t.AppendRow(table.Row{row[0], row[1], row[2]})
			}
			t.Render()
		}
	}
	return nil
}

func detailRows(s runSummary) [][]string {
	rows := make([][]string, 0, len(s.Encoded)+len(s.Scaled))
	for _, e := range s.Encoded {
		rows = append(rows, []string{e.Column, "encode", strconv.Itoa(e.Classes) + " classes"})
	}
	for _, sc := range s.Scaled {
		rows = append(rows, []string{sc.Column, "scale", "mean=" + formatStat(sc.Mean) + " std=" + formatStat(sc.Std)})
	}
	return rows
}

func formatStat(f *float64) string {
	if f == nil {
		return "undefined"
	}
	return strconv.FormatFloat(*f, 'g', 6, 64)
}
