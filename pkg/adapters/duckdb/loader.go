// Package duckdb provides a DuckDB-backed loader for LeapPrep.
//
// The loader reads the file through DuckDB's read_csv_auto, which sniffs the
// dialect and column types, then copies the result into a core.Table.
// Import this package with a blank identifier to register the loader:
//
//	import _ "github.com/leapstack-labs/leapprep/pkg/adapters/duckdb"
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/core"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Name is the registry name of the loader.
const Name = "duckdb"

func init() {
	adapter.Register(Name, func(cfg adapter.Config, logger *slog.Logger) adapter.Loader {
		return New(cfg, logger)
	})
}

// Loader loads CSV files through an in-memory DuckDB database.
type Loader struct {
	cfg    adapter.Config
	logger *slog.Logger
}

// New creates a DuckDB loader instance.
func New(cfg adapter.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{cfg: cfg, logger: logger}
}

// Name returns the registered loader name.
func (l *Loader) Name() string { return Name }

// Load reads the CSV file at path.
func (l *Loader) Load(ctx context.Context, path string) (*core.Table, error) {
	params, err := ParseParams(l.cfg.Params)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	for _, stmt := range buildSettingsSQL(params.Settings) {
		l.logger.Debug("applying duckdb setting", "sql", stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to apply setting: %w", err)
		}
	}

	query := BuildReadCSVSQL(absPath, l.cfg.EffectiveNAValues(), params)
	l.logger.Debug("reading csv with duckdb", "path", absPath)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &core.IOError{Op: "read", Path: path, Err: err}
	}
	defer func() { _ = rows.Close() }()

	tbl, err := adapter.TableFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	l.logger.Debug("loaded csv", "rows", tbl.NumRows(), "columns", tbl.NumCols())
	return tbl, nil
}

// BuildReadCSVSQL renders the read_csv_auto query for a file.
func BuildReadCSVSQL(path string, naValues []string, params *Params) string {
	opts := []string{"header=true"}

	nulls := make([]string, 0, len(naValues)+1)
	nulls = append(nulls, quote(""))
	for _, v := range naValues {
		if v != "" {
			nulls = append(nulls, quote(v))
		}
	}
	opts = append(opts, fmt.Sprintf("nullstr=[%s]", strings.Join(nulls, ", ")))

	sampleSize := -1
	if params != nil && params.SampleSize != 0 {
		sampleSize = params.SampleSize
	}
	opts = append(opts, fmt.Sprintf("sample_size=%d", sampleSize))

	if params != nil && params.Delimiter != "" {
		opts = append(opts, "delim="+quote(params.Delimiter))
	}

	return fmt.Sprintf("SELECT * FROM read_csv_auto(%s, %s)", quote(path), strings.Join(opts, ", "))
}

func buildSettingsSQL(settings map[string]string) []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stmts := make([]string, 0, len(keys))
	for _, k := range keys {
		stmts = append(stmts, fmt.Sprintf("SET %s = %s", k, quote(settings[k])))
	}
	return stmts
}

// quote renders a SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Ensure Loader implements adapter.Loader interface
var _ adapter.Loader = (*Loader)(nil)
