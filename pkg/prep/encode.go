package prep

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
)

// StageEncode names the encoding stage in errors.
const StageEncode = "encode"

// Encoder maps the distinct labels of one column to integer codes. Codes are
// positions in the lexicographically sorted label list.
type Encoder struct {
	Column  string
	Classes []string
	index   map[string]int
}

// NewEncoder builds an encoder from an explicit class list. Classes must be
// distinct; their order defines the codes.
func NewEncoder(column string, classes []string) (*Encoder, error) {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("encoder %q: duplicate class %q", column, c)
		}
		index[c] = i
	}
	return &Encoder{Column: column, Classes: classes, index: index}, nil
}

// FitEncoder learns the classes of a column. Every value is stringified
// first; missing values become the "nan" class.
func FitEncoder(col *core.Column) *Encoder {
	seen := make(map[string]bool)
	for i := 0; i < col.Len(); i++ {
		seen[col.Label(i)] = true
	}
	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	enc, _ := NewEncoder(col.Name, classes)
	return enc
}

// Code returns the code of a label.
func (e *Encoder) Code(label string) (int, bool) {
	code, ok := e.index[label]
	return code, ok
}

// Len returns the number of classes.
func (e *Encoder) Len() int { return len(e.Classes) }

// Transform replaces every value of col with its code. Labels the encoder has
// not seen are an error.
func (e *Encoder) Transform(col *core.Column) (*core.Column, error) {
	codes := make([]int64, col.Len())
	for i := range codes {
		label := col.Label(i)
		code, ok := e.index[label]
		if !ok {
			return nil, fmt.Errorf("column %q row %d: unseen category %q", col.Name, i+1, label)
		}
		codes[i] = int64(code)
	}
	return core.NewIntColumn(col.Name, codes), nil
}

// Mapping returns the label to code mapping.
func (e *Encoder) Mapping() map[string]int {
	m := make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		m[c] = i
	}
	return m
}

// Encode label-encodes the given columns, fitting each encoder on the column
// it transforms. Absent optional columns are skipped.
func Encode(t *core.Table, specs []recipe.ColumnSpec) (*core.Table, *EncoderSet, error) {
	out := t
	set := NewEncoderSet()
	for _, spec := range specs {
		col, err := out.Column(spec.Name)
		if err != nil {
			if spec.Optional {
				continue
			}
			return nil, nil, withStage(err, StageEncode)
		}

		enc := FitEncoder(col)
		encoded, err := enc.Transform(col)
		if err != nil {
			return nil, nil, withStage(err, StageEncode)
		}
		if out, err = out.With(encoded); err != nil {
			return nil, nil, err
		}
		set.Add(enc)
	}
	return out, set, nil
}
