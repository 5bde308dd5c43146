package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/internal/cli/testutil"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func customCatalog() *recipe.Catalog {
	return recipe.NewCatalog(map[string]recipe.Recipe{
		"grades": {
			Description: "Exam scores",
			Bins: []recipe.BinningRule{{
				Column: "Score", Bounds: []float64{0, 50, 100}, Labels: []string{"Fail", "Pass"},
			}},
			Encode: recipe.Required("Score"),
		},
	})
}

func TestListRecipes(t *testing.T) {
	tests := []struct {
		name  string
		tr    *testutil.TestRenderer
		check func(t *testing.T, out string)
	}{
		{
			name: "markdown",
			tr:   testutil.NewTestRendererMarkdown(),
			check: func(t *testing.T, out string) {
				testutil.AssertValidMarkdown(t, out)
				assert.Contains(t, out, "# Recipes (4 total)")
				assert.Contains(t, out, "| grades | config |")
				assert.Contains(t, out, "| sleep-minimal | builtin | 3 | 3 | 8 | processed/sleep_preprocessed.csv |")
			},
		},
		{
			name: "text",
			tr:   testutil.NewTestRenderer(output.ModeText, false),
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Recipes (4 total)")
				assert.Contains(t, out, "sleep-basic")
				assert.Contains(t, out, "┌")
			},
		},
		{
			name: "json",
			tr:   testutil.NewTestRendererJSON(),
			check: func(t *testing.T, out string) {
				var infos []recipeInfo
				require.NoError(t, json.Unmarshal([]byte(out), &infos))
				require.Len(t, infos, 4)
				assert.Equal(t, "grades", infos[0].Name)
				assert.Equal(t, recipe.Sleep, infos[1].Name)
				assert.True(t, infos[1].WriteEncoders)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, listRecipes(tt.tr.Renderer, customCatalog()))
			tt.check(t, tt.tr.Output())
		})
	}
}

func TestShowRecipe(t *testing.T) {
	r, ok := recipe.Builtin(recipe.Sleep)
	require.True(t, ok)

	tr := testutil.NewTestRendererMarkdown()
	require.NoError(t, showRecipe(tr.Renderer, r, false))

	out := tr.Output()
	assert.Contains(t, out, "# Sleep (sleep)")
	assert.Contains(t, out, "| Mood Score | Mood Score | [0, 4, 7, 10] | Low, Medium, High |")
	assert.Contains(t, out, "| Sleep Quality | Sleep Quality Category (optional) |")
	assert.Contains(t, out, "Sleep Quality Category?")
	testutil.AssertValidMarkdown(t, out)

	tr = testutil.NewTestRendererMarkdown()
	basic, _ := recipe.Builtin(recipe.SleepBasic)
	require.NoError(t, showRecipe(tr.Renderer, basic, false))
	assert.Contains(t, tr.Output(), "# Sleep Basic (sleep-basic)")
}

func TestPrintRecipeYAML(t *testing.T) {
	r, ok := recipe.Builtin(recipe.SleepMinimal)
	require.True(t, ok)

	tr := testutil.NewTestRendererText()
	require.NoError(t, printRecipeYAML(tr.Renderer, r))

	var doc struct {
		Recipes map[string]recipe.Recipe `yaml:"recipes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(tr.Output()), &doc))
	got, ok := doc.Recipes[recipe.SleepMinimal]
	require.True(t, ok)
	assert.Equal(t, r.Drop, got.Drop)
	assert.Equal(t, r.Bins, got.Bins)
	assert.Equal(t, "processed/sleep_preprocessed.csv", got.Output)
	assert.False(t, got.WriteEncoders)
	assert.Contains(t, tr.Output(), "bounds: [0, 4, 7, 10]")
}
