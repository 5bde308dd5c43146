package prep

import (
	"math"
	"sort"

	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
)

// StageBin names the binning stage in errors.
const StageBin = "bin"

// Bin applies every rule in order. Each rule reads its source column from the
// table produced by the previous rule, so a rule may bin a column written by
// an earlier one.
//
// Values outside the outermost bounds and missing values become missing
// categories; they are not clipped into the first or last bin.
func Bin(t *core.Table, rules []recipe.BinningRule) (*core.Table, error) {
	out := t
	for _, rule := range rules {
		src, err := out.Column(rule.Column)
		if err != nil {
			if rule.Optional {
				continue
			}
			return nil, withStage(err, StageBin)
		}

		binned, err := BinColumn(src, rule)
		if err != nil {
			return nil, err
		}
		out, err = out.With(binned)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// BinColumn buckets a single column according to rule. The result is a string
// column named after the rule's target.
func BinColumn(col *core.Column, rule recipe.BinningRule) (*core.Column, error) {
	n := col.Len()
	labels := make([]string, n)
	nulls := make([]bool, n)
	for i := 0; i < n; i++ {
		v, err := col.Float(i)
		if err != nil {
			return nil, withStage(err, StageBin)
		}
		idx, ok := BinIndex(v, rule.Bounds)
		if !ok {
			nulls[i] = true
			continue
		}
		labels[i] = rule.Labels[idx]
	}
	return core.NewStringColumn(rule.TargetColumn(), labels, nulls), nil
}

// BinIndex returns the index of the bin holding v. Bins are (lo, hi] with the
// first bin closed on both sides. It reports false for NaN and for values
// outside [bounds[0], bounds[len-1]].
func BinIndex(v float64, bounds []float64) (int, bool) {
	if math.IsNaN(v) || len(bounds) < 2 {
		return 0, false
	}
	// j is the first boundary >= v
	j := sort.SearchFloat64s(bounds, v)
	switch {
	case j == len(bounds):
		return 0, false
	case j == 0:
		if v == bounds[0] {
			return 0, true
		}
		return 0, false
	default:
		return j - 1, true
	}
}
