package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the LeapPrep version with the registered loaders and built-in recipes.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "LeapPrep v%s\n", version)
			_, _ = fmt.Fprintf(w, "Loaders: %s\n", strings.Join(adapter.ListLoaders(), ", "))
			_, _ = fmt.Fprintf(w, "Recipes: %s\n", strings.Join(recipe.BuiltinNames(), ", "))
		},
	}
}
