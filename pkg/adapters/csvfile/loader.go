// Package csvfile provides the native CSV loader for LeapPrep.
//
// Import this package with a blank identifier to register the loader:
//
//	import _ "github.com/leapstack-labs/leapprep/pkg/adapters/csvfile"
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/core"
)

// Name is the registry name of the loader.
const Name = "csv"

const (
	bufSize       = 4 << 20 // 4 MiB
	checkCtxEvery = 10_000
)

func init() {
	adapter.Register(Name, func(cfg adapter.Config, logger *slog.Logger) adapter.Loader {
		return New(cfg, logger)
	})
}

// Loader reads comma-separated files with a header row.
type Loader struct {
	na     map[string]bool
	logger *slog.Logger
}

// New creates a CSV loader.
func New(cfg adapter.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	na := map[string]bool{"": true}
	for _, tok := range cfg.EffectiveNAValues() {
		na[tok] = true
	}
	return &Loader{na: na, logger: logger}
}

// Name returns the registered loader name.
func (l *Loader) Name() string { return Name }

// Load parses the file at path.
func (l *Loader) Load(ctx context.Context, path string) (*core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.IOError{Op: "read", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	tbl, err := l.Read(ctx, f)
	if err != nil {
		return nil, &core.IOError{Op: "read", Path: path, Err: err}
	}
	return tbl, nil
}

// Read parses CSV content from r.
func (l *Loader) Read(ctx context.Context, r io.Reader) (*core.Table, error) {
	reader := csv.NewReader(bufio.NewReaderSize(r, bufSize))

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	cells := make([][]string, len(header))

	rowNum := 1 // header already counted
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rowNum, err)
		}
		for i, v := range row {
			cells[i] = append(cells[i], v)
		}
		if rowNum%checkCtxEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	columns := make([]*core.Column, len(header))
	for i, name := range header {
		columns[i] = l.inferColumn(name, cells[i])
		l.logger.Debug("inferred column type", "column", name, "kind", columns[i].Kind.String())
	}

	tbl, err := core.NewTable(columns...)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded csv", "rows", tbl.NumRows(), "columns", tbl.NumCols())
	return tbl, nil
}

// inferColumn picks the narrowest kind that holds every value: int when all
// values are integral and none is missing, float when all values are
// numeric, string otherwise.
func (l *Loader) inferColumn(name string, values []string) *core.Column {
	missing := make([]bool, len(values))
	hasMissing := false
	for i, v := range values {
		if l.na[v] {
			missing[i] = true
			hasMissing = true
		}
	}

	if !hasMissing && len(values) > 0 {
		if ints, ok := parseInts(values); ok {
			return core.NewIntColumn(name, ints)
		}
	}
	if floats, ok := parseFloats(values, missing); ok {
		return core.NewFloatColumn(name, floats)
	}

	out := make([]string, len(values))
	for i, v := range values {
		if !missing[i] {
			out[i] = v
		}
	}
	return core.NewStringColumn(name, out, missing)
}

func parseInts(values []string) ([]int64, bool) {
	out := make([]int64, len(values))
	for i, v := range values {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func parseFloats(values []string, missing []bool) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, v := range values {
		if missing[i] {
			out[i] = math.NaN()
			continue
		}
		f, err := core.ParseNumber(v)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
