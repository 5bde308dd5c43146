package prep

import (
	"math"

	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
)

// StageScale names the scaling stage in errors.
const StageScale = "scale"

// ScaleStats are the parameters a column was standardized with.
type ScaleStats struct {
	Column string
	Mean   float64
	Std    float64 // population standard deviation
	Count  int     // non-missing values
}

// FitScale computes mean and population standard deviation over the
// non-missing values.
func FitScale(name string, values []float64) ScaleStats {
	st := ScaleStats{Column: name}
	var sum float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		st.Count++
	}
	if st.Count == 0 {
		st.Mean, st.Std = math.NaN(), math.NaN()
		return st
	}
	st.Mean = sum / float64(st.Count)

	var ss float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - st.Mean
		ss += d * d
	}
	st.Std = math.Sqrt(ss / float64(st.Count))
	return st
}

// Apply standardizes values. A zero standard deviation is not special-cased:
// a constant column comes out as NaN (or ±Inf from rounding in the mean).
func (st ScaleStats) Apply(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - st.Mean) / st.Std
	}
	return out
}

// Scale standardizes the given columns. Absent optional columns are skipped.
// Each column is fitted on its own values.
func Scale(t *core.Table, specs []recipe.ColumnSpec) (*core.Table, []ScaleStats, error) {
	out := t
	stats := make([]ScaleStats, 0, len(specs))
	for _, spec := range specs {
		col, err := out.Column(spec.Name)
		if err != nil {
			if spec.Optional {
				continue
			}
			return nil, nil, withStage(err, StageScale)
		}

		values, err := col.Floats64()
		if err != nil {
			return nil, nil, withStage(err, StageScale)
		}
		st := FitScale(col.Name, values)
		if out, err = out.With(core.NewFloatColumn(col.Name, st.Apply(values))); err != nil {
			return nil, nil, err
		}
		stats = append(stats, st)
	}
	return out, stats, nil
}
