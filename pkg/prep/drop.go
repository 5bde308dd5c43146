package prep

import "github.com/leapstack-labs/leapprep/pkg/core"

// Drop removes the named columns. Names not present are ignored.
func Drop(t *core.Table, names []string) *core.Table {
	return t.Without(names...)
}
