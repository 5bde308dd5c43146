// Package cli provides the command-line interface for LeapPrep.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapprep/internal/cli/commands"
	"github.com/leapstack-labs/leapprep/internal/cli/config"
	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/spf13/cobra"

	// Register input loaders
	_ "github.com/leapstack-labs/leapprep/pkg/adapters/csvfile"
	_ "github.com/leapstack-labs/leapprep/pkg/adapters/duckdb"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version is overridden at build time with -ldflags.
var Version = "0.1.0"

// NewRootCmd builds the leapprep command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leapprep",
		Short: "LeapPrep - Tabular Preprocessing Pipeline",
		Long: `LeapPrep turns a raw CSV table into a model-ready one.

It drops unused columns, bins numeric columns into ordinal levels, label-encodes
categorical columns and standard-scales numeric columns, then writes the result
and the label mappings next to each other. Which columns take part in each
stage is described by a recipe.`,
		Example: `  leapprep -i sleep.csv -o processed/sleep.csv
  leapprep -i sleep.csv --recipe sleep-minimal
  leapprep recipes`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// help and completion must work without a valid config
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, config.LoggerKey(), NewLogger(cmd.ErrOrStderr(), cfg.Verbose)))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !commands.RunFlagsChanged(cmd.Flags()) && cfg != nil && cfg.Input == "" {
				return cmd.Help()
			}
			return commands.RunPreprocess(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./leapprep.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("format", "f", "", "Output format (auto|text|markdown|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes, cobra.ShellCompDirectiveNoFileComp
	})

	// Bare `leapprep -i ...` runs the pipeline.
	commands.AddRunFlags(rootCmd)

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewRecipesCommand())
	rootCmd.AddCommand(commands.NewEncodersCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewLogger creates the CLI logger. Verbose runs log at debug level,
// otherwise only warnings and errors are shown.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the CLI and prints any error to stderr.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for LeapPrep.

To load completions:

Bash:
  $ source <(leapprep completion bash)

Zsh:
  $ leapprep completion zsh > "${fpath[1]}/_leapprep"

Fish:
  $ leapprep completion fish | source

PowerShell:
  PS> leapprep completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
