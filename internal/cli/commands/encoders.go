package commands

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/pkg/prep"
	"github.com/spf13/cobra"
)

// NewEncodersCommand creates the encoders command.
func NewEncodersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encoders <file>",
		Short: "Show the label mappings of an encoder file",
		Long: `Read an _encoders.json file written by a run and print, for every encoded
column, which code each category was given.`,
		Example: `  leapprep encoders processed/sleep_encoders.json
  leapprep encoders processed/sleep_encoders.json --format json`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			set, err := prep.ReadEncoders(args[0])
			if err != nil {
				return err
			}
			return renderEncoders(cc.Renderer, set)
		},
	}
}

func renderEncoders(r *output.Renderer, set *prep.EncoderSet) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(set)
	case output.ModeMarkdown:
		for _, col := range set.Columns() {
			enc, _ := set.Get(col)
			rows := make([][]string, enc.Len())
			for code, class := range enc.Classes {
				rows[code] = []string{class, strconv.Itoa(code)}
			}
			r.Header(2, col)
			r.Println(output.FormatTable([]string{"Category", "Code"}, rows))
		}
	default:
		for i, col := range set.Columns() {
			enc, _ := set.Get(col)
			if i > 0 {
				r.Println("")
			}
			r.Header(2, fmt.Sprintf("%s (%d classes)", col, enc.Len()))
			t := table.NewWriter()
			t.SetOutputMirror(r.Writer())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Category", "Code"})
			for code, class := range enc.Classes {
				t.AppendRow(table.Row{class, code})
			}
			t.Render()
		}
	}
	return nil
}
