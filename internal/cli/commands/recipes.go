package commands

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// RecipesOptions holds options for the recipes command.
type RecipesOptions struct {
	YAML bool
}

// NewRecipesCommand creates the recipes command.
func NewRecipesCommand() *cobra.Command {
	opts := &RecipesOptions{}

	cmd := &cobra.Command{
		Use:   "recipes [name]",
		Short: "List preprocessing recipes or show one",
		Long: `List the built-in recipes and those declared under recipes: in leapprep.yaml.

With a name, show the columns each stage of that recipe works on. --yaml
prints the recipe in the config file format, ready to be copied and edited.`,
		Example: `  # List all recipes
  leapprep recipes

  # Show one recipe
  leapprep recipes sleep-basic

  # Start a custom recipe from a built-in one
  leapprep recipes sleep --yaml >> leapprep.yaml`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return getConfig().Catalog().Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			catalog := cc.Cfg.Catalog()
			if len(args) == 0 {
				if opts.YAML {
					return fmt.Errorf("--yaml requires a recipe name")
				}
				return listRecipes(cc.Renderer, catalog)
			}

			r, err := catalog.Get(args[0])
			if err != nil {
				return err
			}
			if opts.YAML {
				return printRecipeYAML(cc.Renderer, r)
			}
			return showRecipe(cc.Renderer, r, catalog.IsCustom(r.Name))
		},
	}

	cmd.Flags().BoolVar(&opts.YAML, "yaml", false, "Print the recipe as config YAML")

	return cmd
}

// recipeInfo is the JSON form of a recipe.
type recipeInfo struct {
	Name          string               `json:"name"`
	Source        string               `json:"source"`
	Description   string               `json:"description,omitempty"`
	Drop          []string             `json:"drop"`
	Bins          []recipe.BinningRule `json:"bins"`
	Encode        []recipe.ColumnSpec  `json:"encode"`
	Scale         []recipe.ColumnSpec  `json:"scale"`
	Output        string               `json:"output,omitempty"`
	WriteEncoders bool                 `json:"write_encoders"`
}

func newRecipeInfo(r *recipe.Recipe, custom bool) recipeInfo {
	source := "builtin"
	if custom {
		source = "config"
	}
	return recipeInfo{
		Name:          r.Name,
		Source:        source,
		Description:   r.Description,
		Drop:          nonNil(r.Drop),
		Bins:          nonNil(r.Bins),
		Encode:        nonNil(r.Encode),
		Scale:         nonNil(r.Scale),
		Output:        r.Output,
		WriteEncoders: r.WriteEncoders,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func listRecipes(r *output.Renderer, catalog *recipe.Catalog) error {
	infos := make([]recipeInfo, 0)
	for _, name := range catalog.Names() {
		rec, err := catalog.Get(name)
		if err != nil {
			return err
		}
		infos = append(infos, newRecipeInfo(rec, catalog.IsCustom(name)))
	}

	header := []string{"Name", "Source", "Bins", "Encode", "Scale", "Output", "Description"}
	rows := make([][]string, len(infos))
	for i, info := range infos {
		out := info.Output
		if out == "" {
			out = "--output"
		}
		rows[i] = []string{
			info.Name, info.Source,
			strconv.Itoa(len(info.Bins)), strconv.Itoa(len(info.Encode)), strconv.Itoa(len(info.Scale)),
			out, info.Description,
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeMarkdown:
		r.Header(1, fmt.Sprintf("Recipes (%d total)", len(infos)))
		r.Println(output.FormatTable(header, rows))
	default:
		r.Header(1, fmt.Sprintf("Recipes (%d total)", len(infos)))
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		headerRow := make(table.Row, len(header))
		for i, h := range header {
			headerRow[i] = h
		}
		t.AppendHeader(headerRow)
		for _, row := range rows {
			tr := make(table.Row, len(row))
			for i, v := range row {
				tr[i] = v
			}
			t.AppendRow(tr)
		}
		t.Render()
	}
	return nil
}

func showRecipe(r *output.Renderer, rec *recipe.Recipe, custom bool) error {
	info := newRecipeInfo(rec, custom)
	mode := r.EffectiveMode()
	if mode == output.ModeJSON {
		return r.JSON(info)
	}

	title := cases.Title(language.English).String(strings.ReplaceAll(rec.Name, "-", " "))
	r.Header(1, fmt.Sprintf("%s (%s)", title, rec.Name))
	if rec.Description != "" {
		r.Muted(rec.Description)
		r.Println("")
	}

	stages := [][]string{
		{"Drop", strings.Join(rec.Drop, ", ")},
		{"Encode", describeSpecs(rec.Encode)},
		{"Scale", describeSpecs(rec.Scale)},
		{"Output", valueOr(rec.Output, "--output")},
		{"Encoders", strconv.FormatBool(rec.WriteEncoders)},
	}
	bins := make([][]string, len(rec.Bins))
	for i, b := range rec.Bins {
		target := b.TargetColumn()
		if b.Optional {
			target += " (optional)"
		}
		bins[i] = []string{b.Column, target, formatBounds(b.Bounds), strings.Join(b.Labels, ", ")}
	}
	binHeader := []string{"Column", "Target", "Bounds", "Labels"}

	if mode == output.ModeMarkdown {
		r.Println(output.FormatTable([]string{"Stage", "Columns"}, stages))
		if len(bins) > 0 {
			r.Header(2, "Bins")
			r.Println(output.FormatTable(binHeader, bins))
		}
		return nil
	}

	styles := r.Styles()
	for _, s := range stages {
		r.Printf("  %s %s\n", styles.Key.Render(fmt.Sprintf("%-9s", s[0]+":")), valueOr(s[1], "-"))
	}
	if len(bins) > 0 {
		r.Println("")
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{binHeader[0], binHeader[1], binHeader[2], binHeader[3]})
		for _, b := range bins {
			t.AppendRow(table.Row{b[0], b[1], b[2], b[3]})
		}
		t.Render()
	}
	return nil
}

func printRecipeYAML(r *output.Renderer, rec *recipe.Recipe) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	doc := map[string]map[string]*recipe.Recipe{"recipes": {rec.Name: rec}}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode recipe: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode recipe: %w", err)
	}
	_, err := r.Writer().Write(buf.Bytes())
	return err
}

func describeSpecs(specs []recipe.ColumnSpec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.Name
		if s.Optional {
			parts[i] += "?"
		}
	}
	return strings.Join(parts, ", ")
}

func formatBounds(bounds []float64) string {
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = strconv.FormatFloat(b, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
