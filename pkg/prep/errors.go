package prep

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapprep/pkg/core"
)

// withStage attributes err to a pipeline stage.
func withStage(err error, stage string) error {
	var mce *core.MissingColumnError
	if errors.As(err, &mce) {
		cp := *mce
		cp.Stage = stage
		return &cp
	}
	return fmt.Errorf("%s: %w", stage, err)
}
