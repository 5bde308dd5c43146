package adapter

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// TableFromRows drains a result set into a table. Column kinds follow the
// scanned values: integers without NULLs stay integer, numbers with NULLs or
// fractions become float, anything else is kept as text.
// The caller keeps ownership of rows and must close it.
func TableFromRows(rows *sql.Rows) (*core.Table, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	cells := make([][]any, len(names))
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			cells[i] = append(cells[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	columns := make([]*core.Column, len(names))
	for i, name := range names {
		columns[i] = columnFromValues(name, cells[i])
	}
	return core.NewTable(columns...)
}

func columnFromValues(name string, values []any) *core.Column {
	allInt, allNumeric := true, true
	for _, v := range values {
		if v == nil {
			allInt = false
			continue
		}
		if _, ok := asInt(v); ok {
			continue
		}
		allInt = false
		if _, ok := asFloat(v); !ok {
			allNumeric = false
			break
		}
	}

	switch {
	case allInt && len(values) > 0:
		out := make([]int64, len(values))
		for i, v := range values {
			out[i], _ = asInt(v)
		}
		return core.NewIntColumn(name, out)
	case allNumeric:
		out := make([]float64, len(values))
		for i, v := range values {
			if v == nil {
				out[i] = math.NaN()
				continue
			}
			if n, ok := asInt(v); ok {
				out[i] = float64(n)
				continue
			}
			out[i], _ = asFloat(v)
		}
		return core.NewFloatColumn(name, out)
	default:
		out := make([]string, len(values))
		nulls := make([]bool, len(values))
		for i, v := range values {
			if v == nil {
				nulls[i] = true
				continue
			}
			out[i] = stringify(v)
		}
		return core.NewStringColumn(name, out, nulls)
	}
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case bool:
		return strconv.FormatBool(s)
	case time.Time:
		if s.Hour() == 0 && s.Minute() == 0 && s.Second() == 0 && s.Nanosecond() == 0 {
			return s.Format(time.DateOnly)
		}
		return s.Format(time.DateTime)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
