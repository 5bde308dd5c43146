package core

import (
	"fmt"
	"math"
)

// =============================================================================
// Kind
// =============================================================================

// Kind is the storage type of a column.
type Kind int

// Column kinds.
const (
	// KindInt holds int64 values and never contains missing values.
	KindInt Kind = iota
	// KindFloat holds float64 values; NaN marks a missing value.
	KindFloat
	// KindString holds strings with a separate null mask.
	KindString
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// =============================================================================
// Column
// =============================================================================

// Column is a named, typed vector of values. Only the slice matching Kind is
// populated. Columns are never mutated once they are part of a Table; stages
// build new columns instead.
type Column struct {
	Name    string
	Kind    Kind
	Ints    []int64
	Floats  []float64
	Strings []string
	Nulls   []bool // string columns only, true marks a missing value
}

// NewIntColumn creates an integer column.
func NewIntColumn(name string, values []int64) *Column {
	return &Column{Name: name, Kind: KindInt, Ints: values}
}

// NewFloatColumn creates a float column. NaN entries are missing values.
func NewFloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindFloat, Floats: values}
}

// NewStringColumn creates a string column. A nil nulls slice means no value
// is missing.
func NewStringColumn(name string, values []string, nulls []bool) *Column {
	if nulls == nil {
		nulls = make([]bool, len(values))
	}
	return &Column{Name: name, Kind: KindString, Strings: values, Nulls: nulls}
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindInt:
		return len(c.Ints)
	case KindFloat:
		return len(c.Floats)
	default:
		return len(c.Strings)
	}
}

// IsMissing reports whether row i holds a missing value.
func (c *Column) IsMissing(i int) bool {
	switch c.Kind {
	case KindInt:
		return false
	case KindFloat:
		return math.IsNaN(c.Floats[i])
	default:
		return c.Nulls[i]
	}
}

// Float returns row i as a float64. Missing values return NaN. String values
// are parsed; a value that is not a number yields a TypeConversionError.
func (c *Column) Float(i int) (float64, error) {
	switch c.Kind {
	case KindInt:
		return float64(c.Ints[i]), nil
	case KindFloat:
		return c.Floats[i], nil
	default:
		if c.Nulls[i] {
			return math.NaN(), nil
		}
		f, err := ParseNumber(c.Strings[i])
		if err != nil {
			return 0, &TypeConversionError{Column: c.Name, Row: i, Value: c.Strings[i], Err: err}
		}
		return f, nil
	}
}

// Floats64 converts the whole column to float64 values.
func (c *Column) Floats64() ([]float64, error) {
	out := make([]float64, c.Len())
	for i := range out {
		f, err := c.Float(i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// Format returns row i the way it is written to CSV. Missing values are empty.
func (c *Column) Format(i int) string {
	switch c.Kind {
	case KindInt:
		return FormatInt(c.Ints[i])
	case KindFloat:
		if math.IsNaN(c.Floats[i]) {
			return ""
		}
		return FormatFloat(c.Floats[i])
	default:
		if c.Nulls[i] {
			return ""
		}
		return c.Strings[i]
	}
}

// Label returns row i as a category label, using "nan" for missing values.
func (c *Column) Label(i int) string {
	switch c.Kind {
	case KindInt:
		return FormatInt(c.Ints[i])
	case KindFloat:
		return FormatFloat(c.Floats[i])
	default:
		if c.Nulls[i] {
			return MissingLabel
		}
		return c.Strings[i]
	}
}

// Rename returns a shallow copy of the column under a new name.
func (c *Column) Rename(name string) *Column {
	cp := *c
	cp.Name = name
	return &cp
}

// =============================================================================
// Table
// =============================================================================

// Table is an ordered set of equally long columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns. All columns must have the same length
// and distinct names.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column { return t.columns }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table contains a column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a column by name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Column: name, Available: t.Names()}
	}
	return t.columns[i], nil
}

// Without returns a new table lacking the named columns. Names not present
// are ignored.
func (t *Table) Without(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := make([]*Column, 0, len(t.columns))
	for _, c := range t.columns {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	return t.derive(kept)
}

// With returns a new table where col replaces the column of the same name,
// or is appended when no such column exists.
func (t *Table) With(col *Column) (*Table, error) {
	if col.Len() != t.rows && len(t.columns) > 0 {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
	}
	cols := make([]*Column, len(t.columns), len(t.columns)+1)
	copy(cols, t.columns)
	if i, ok := t.index[col.Name]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return t.derive(cols), nil
}

func (t *Table) derive(cols []*Column) *Table {
	out := &Table{
		columns: cols,
		index:   make(map[string]int, len(cols)),
		rows:    t.rows,
	}
	if len(cols) > 0 {
		out.rows = cols[0].Len()
	}
	for i, c := range cols {
		out.index[c.Name] = i
	}
	return out
}

// Record returns row i formatted for CSV output.
func (t *Table) Record(i int) []string {
	rec := make([]string, len(t.columns))
	for j, c := range t.columns {
		rec[j] = c.Format(i)
	}
	return rec
}
