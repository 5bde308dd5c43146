package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		NewIntColumn("id", []int64{1, 2, 3}),
		NewFloatColumn("score", []float64{1.5, math.NaN(), 3}),
		NewStringColumn("name", []string{"a", "", "c"}, []bool{false, true, false}),
	)
	require.NoError(t, err)
	return tbl
}

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		columns []*Column
		wantErr string
	}{
		{
			name: "aligned columns",
			columns: []*Column{
				NewIntColumn("a", []int64{1, 2}),
				NewFloatColumn("b", []float64{1, 2}),
			},
		},
		{
			name: "length mismatch",
			columns: []*Column{
				NewIntColumn("a", []int64{1, 2}),
				NewFloatColumn("b", []float64{1}),
			},
			wantErr: `column "b" has 1 rows, expected 2`,
		},
		{
			name: "duplicate name",
			columns: []*Column{
				NewIntColumn("a", []int64{1}),
				NewIntColumn("a", []int64{2}),
			},
			wantErr: `duplicate column "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := NewTable(tt.columns...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.columns), tbl.NumCols())
		})
	}
}

func TestTable_Column_Missing(t *testing.T) {
	tbl := sampleTable(t)

	_, err := tbl.Column("nope")
	require.Error(t, err)

	var mce *MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "nope", mce.Column)
	assert.Equal(t, []string{"id", "score", "name"}, mce.Available)
}

func TestTable_Without(t *testing.T) {
	tbl := sampleTable(t)

	out := tbl.Without("score", "absent")
	assert.Equal(t, []string{"id", "name"}, out.Names())
	assert.Equal(t, 3, out.NumRows())

	// The source table is untouched
	assert.Equal(t, []string{"id", "score", "name"}, tbl.Names())

	empty := tbl.Without("id", "score", "name")
	assert.Equal(t, 0, empty.NumCols())
	assert.Equal(t, 3, empty.NumRows(), "row count survives dropping every column")
}

func TestTable_With(t *testing.T) {
	tbl := sampleTable(t)

	replaced, err := tbl.With(NewIntColumn("score", []int64{7, 8, 9}))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "score", "name"}, replaced.Names())
	col, err := replaced.Column("score")
	require.NoError(t, err)
	assert.Equal(t, KindInt, col.Kind)

	orig, err := tbl.Column("score")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, orig.Kind, "With must not mutate the receiver")

	appended, err := tbl.With(NewStringColumn("extra", []string{"x", "y", "z"}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "score", "name", "extra"}, appended.Names())

	_, err = tbl.With(NewIntColumn("short", []int64{1}))
	assert.Error(t, err)
}

func TestTable_Record(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, []string{"1", "1.5", "a"}, tbl.Record(0))
	assert.Equal(t, []string{"2", "", ""}, tbl.Record(1))
	assert.Equal(t, []string{"3", "3.0", "c"}, tbl.Record(2))
}

func TestColumn_Float(t *testing.T) {
	col := NewStringColumn("v", []string{"4", " 2.5 ", "", "abc"}, []bool{false, false, true, false})

	f, err := col.Float(0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, f)

	f, err = col.Float(1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	f, err = col.Float(2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))

	_, err = col.Float(3)
	var tce *TypeConversionError
	require.True(t, errors.As(err, &tce))
	assert.Equal(t, "v", tce.Column)
	assert.Equal(t, 3, tce.Row)
	assert.Equal(t, "abc", tce.Value)
}

func TestColumn_Label(t *testing.T) {
	assert.Equal(t, "4", NewIntColumn("a", []int64{4}).Label(0))
	assert.Equal(t, "4.0", NewFloatColumn("a", []float64{4}).Label(0))
	assert.Equal(t, "nan", NewFloatColumn("a", []float64{math.NaN()}).Label(0))
	assert.Equal(t, "nan", NewStringColumn("a", []string{""}, []bool{true}).Label(0))
	assert.Equal(t, "Low", NewStringColumn("a", []string{"Low"}, nil).Label(0))
}
