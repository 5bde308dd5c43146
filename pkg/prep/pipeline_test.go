package prep

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapprep/internal/testutil"
	"github.com/leapstack-labs/leapprep/pkg/adapter"
	"github.com/leapstack-labs/leapprep/pkg/adapters/csvfile"
	"github.com/leapstack-labs/leapprep/pkg/core"
	"github.com/leapstack-labs/leapprep/pkg/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sleepHeader = "Date,Person_ID,Age,Gender,Sleep Start Time,Sleep End Time,Total Sleep Hours," +
	"Sleep Quality,Exercise (mins/day),Caffeine Intake (mg),Screen Time Before Bed (mins)," +
	"Work Hours (hrs/day),Productivity Score,Mood Score,Stress Level\n"

const sleepRows = "2024-01-01,1,25,Male,23.5,7.0,7.5,8,30,100,45,8.0,7,4,7\n" +
	"2024-01-02,2,31,Female,22.0,6.5,8.5,6,0,50,120,9.5,6,7,3\n" +
	"2024-01-03,3,44,Other,0.5,7.25,6.75,3,60,0,15,7.0,8,10,0\n" +
	"2024-01-04,4,28,Male,23.0,6.0,7.0,10,15,200,60,10.0,5,0,10\n" +
	"2024-01-05,5,39,Female,21.5,5.5,8.0,5,45,150,200,6.5,9,6,5\n"

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newPreprocessor(t *testing.T) *Preprocessor {
	t.Helper()
	return New(csvfile.New(adapter.Config{}, nil), testutil.NewTestLogger(t))
}

func builtin(t *testing.T, name string) *recipe.Recipe {
	t.Helper()
	r, ok := recipe.Builtin(name)
	require.True(t, ok, "builtin %s", name)
	return r
}

func TestPreprocess_SleepRecipe(t *testing.T) {
	input := writeInput(t, sleepHeader+sleepRows)
	output := filepath.Join(t.TempDir(), "out", "sleep.csv")

	res, err := newPreprocessor(t).Preprocess(context.Background(), Options{
		Input:  input,
		Output: output,
		Recipe: builtin(t, recipe.Sleep),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, res.InputRows)
	assert.Equal(t, 15, res.InputCols)
	assert.Equal(t, 5, res.Table.NumRows())
	assert.Equal(t, []string{
		"Age", "Sleep Start Time", "Sleep End Time", "Total Sleep Hours",
		"Sleep Quality", "Screen Time Before Bed (mins)", "Work Hours (hrs/day)",
		"Mood Score", "Stress Level", "Sleep Quality Category",
	}, res.Table.Names())
	assert.Equal(t, output, res.OutputPath)
	assert.Equal(t, filepath.Join(filepath.Dir(output), "sleep_encoders.json"), res.EncodersPath)

	assert.Equal(t, []string{
		"Mood Score", "Stress Level", "Screen Time Before Bed (mins)", "Sleep Quality Category",
	}, res.Encoders.Columns())

	screen, _ := res.Encoders.Get("Screen Time Before Bed (mins)")
	assert.Equal(t, []string{"30–60 menit", "<30 menit", ">60 menit", "nan"}, screen.Classes,
		"200 minutes is above the last boundary and is encoded as the missing category")

	category, err := res.Table.Column("Sleep Quality Category")
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 2, 1, 0, 2}, category.Ints)

	quality, _ := res.Table.Column("Sleep Quality")
	assert.Equal(t, core.KindInt, quality.Kind, "Sleep Quality is binned into a new column, not scaled")

	// Scaled columns have zero mean and unit population deviation
	for _, name := range []string{"Age", "Mood Score", "Screen Time Before Bed (mins)"} {
		col, err := res.Table.Column(name)
		require.NoError(t, err)
		require.Equal(t, core.KindFloat, col.Kind, name)
		mean, std := meanStd(col.Floats)
		assert.InDelta(t, 0, mean, 1e-9, name)
		assert.InDelta(t, 1, std, 1e-9, name)
	}

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, "Age,Sleep Start Time,Sleep End Time,Total Sleep Hours,Sleep Quality,"+
		"Screen Time Before Bed (mins),Work Hours (hrs/day),Mood Score,Stress Level,Sleep Quality Category", lines[0])

	enc, err := os.ReadFile(res.EncodersPath)
	require.NoError(t, err)
	assert.Contains(t, string(enc), "{\n  \"Mood Score\": {\n    \"High\": 0,\n    \"Low\": 1,\n    \"Medium\": 2\n  },")
	assert.Contains(t, string(enc), `"<30 menit": 1`)

	set, err := ReadEncoders(res.EncodersPath)
	require.NoError(t, err)
	assert.Equal(t, res.Encoders.Columns(), set.Columns())
}

func TestPreprocess_MoodScoreCodes(t *testing.T) {
	// 4 closes the Low bin and 7 closes the Medium bin
	content := "Mood Score,Stress Level,Screen Time Before Bed (mins)\n" +
		"4,0,10\n7,0,10\n10,0,10\n0,0,10\n"
	r := builtin(t, recipe.SleepBasic)
	r.Scale = nil

	res, err := newPreprocessor(t).Transform(context.Background(), mustRead(t, content), r)
	require.NoError(t, err)

	mood, _ := res.Encoders.Get("Mood Score")
	assert.Equal(t, []string{"High", "Low", "Medium"}, mood.Classes)

	col, _ := res.Table.Column("Mood Score")
	assert.Equal(t, []int64{1, 2, 0, 1}, col.Ints)
}

func TestPreprocess_MinimalRecipeUsesFixedOutput(t *testing.T) {
	input := writeInput(t, sleepHeader+sleepRows)
	t.Chdir(t.TempDir())

	res, err := newPreprocessor(t).Preprocess(context.Background(), Options{
		Input:  input,
		Recipe: builtin(t, recipe.SleepMinimal),
	})
	require.NoError(t, err)
	assert.Equal(t, "processed/sleep_preprocessed.csv", res.OutputPath)
	assert.Empty(t, res.EncodersPath)

	assert.FileExists(t, "processed/sleep_preprocessed.csv")
	assert.NoFileExists(t, "processed/sleep_preprocessed_encoders.json")
}

func TestPreprocess_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		recipe  func(*recipe.Recipe)
		output  string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "missing binned column",
			content: "Age,Stress Level,Screen Time Before Bed (mins)\n30,4,20\n",
			output:  "out.csv",
			check: func(t *testing.T, err error) {
				var mce *core.MissingColumnError
				require.True(t, errors.As(err, &mce))
				assert.Equal(t, "Mood Score", mce.Column)
				assert.Equal(t, StageBin, mce.Stage)
			},
		},
		{
			name:    "non numeric value in binned column",
			content: "Mood Score,Stress Level,Screen Time Before Bed (mins)\n4,5,20\nhappy,5,20\n",
			output:  "out.csv",
			check: func(t *testing.T, err error) {
				var tce *core.TypeConversionError
				require.True(t, errors.As(err, &tce))
				assert.Equal(t, "Mood Score", tce.Column)
			},
		},
		{
			name:    "no output path",
			content: sleepHeader + sleepRows,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoOutput)
			},
		},
		{
			name:    "empty input",
			content: "",
			output:  "out.csv",
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "empty input")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeInput(t, tt.content)
			outDir := t.TempDir()
			output := ""
			if tt.output != "" {
				output = filepath.Join(outDir, tt.output)
			}

			_, err := newPreprocessor(t).Preprocess(context.Background(), Options{
				Input:  input,
				Output: output,
				Recipe: builtin(t, recipe.SleepBasic),
			})
			require.Error(t, err)
			tt.check(t, err)

			entries, readErr := os.ReadDir(outDir)
			require.NoError(t, readErr)
			assert.Empty(t, entries, "nothing is written when a stage fails")
		})
	}
}

func TestPreprocess_MissingInput(t *testing.T) {
	_, err := newPreprocessor(t).Preprocess(context.Background(), Options{
		Input:  filepath.Join(t.TempDir(), "nope.csv"),
		Output: filepath.Join(t.TempDir(), "out.csv"),
		Recipe: builtin(t, recipe.Sleep),
	})
	var ioErr *core.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
}

func TestTransform_RowCountInvariant(t *testing.T) {
	in := mustRead(t, sleepHeader+sleepRows)
	for _, name := range recipe.BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			res, err := newPreprocessor(t).Transform(context.Background(), in, builtin(t, name))
			require.NoError(t, err)
			assert.Equal(t, in.NumRows(), res.Table.NumRows())
		})
	}
}

func TestTransform_Deterministic(t *testing.T) {
	in := mustRead(t, sleepHeader+sleepRows)
	p := newPreprocessor(t)

	a, err := p.Transform(context.Background(), in, builtin(t, recipe.Sleep))
	require.NoError(t, err)
	b, err := p.Transform(context.Background(), in, builtin(t, recipe.Sleep))
	require.NoError(t, err)

	for i := 0; i < a.Table.NumRows(); i++ {
		assert.Equal(t, a.Table.Record(i), b.Table.Record(i))
	}
}

// Re-running on an already processed table bins the scaled values again, so
// the pipeline is not idempotent.
func TestTransform_NotIdempotent(t *testing.T) {
	in := mustRead(t, sleepHeader+sleepRows)
	p := newPreprocessor(t)

	first, err := p.Transform(context.Background(), in, builtin(t, recipe.SleepBasic))
	require.NoError(t, err)
	second, err := p.Transform(context.Background(), first.Table, builtin(t, recipe.SleepBasic))
	require.NoError(t, err)

	a, _ := first.Encoders.Get("Mood Score")
	b, _ := second.Encoders.Get("Mood Score")
	assert.NotEqual(t, a.Classes, b.Classes)
	assert.Contains(t, b.Classes, core.MissingLabel)
}

func TestTransform_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPreprocessor(t).Transform(ctx, mustRead(t, sleepHeader+sleepRows), builtin(t, recipe.Sleep))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransform_MissingValuesStayMissing(t *testing.T) {
	content := "Mood Score,Stress Level,Screen Time Before Bed (mins),Age\n" +
		"4,5,20,30\n7,5,20,\n1,5,20,40\n"
	res, err := newPreprocessor(t).Transform(context.Background(), mustRead(t, content), builtin(t, recipe.SleepBasic))
	require.NoError(t, err)

	age, _ := res.Table.Column("Age")
	assert.True(t, math.IsNaN(age.Floats[1]))
	assert.InDelta(t, -1, age.Floats[0], 1e-12)
	assert.InDelta(t, 1, age.Floats[2], 1e-12)
}

func mustRead(t *testing.T, content string) *core.Table {
	t.Helper()
	tbl, err := csvfile.New(adapter.Config{}, nil).Read(context.Background(), strings.NewReader(content))
	require.NoError(t, err)
	return tbl
}

func TestTransform_WarnsOnConstantColumn(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger(slog.LevelWarn)
	p := New(csvfile.New(adapter.Config{}, nil), logger)

	content := "Mood Score,Stress Level,Screen Time Before Bed (mins),Age\n" +
		"4,5,20,30\n7,5,25,35\n1,5,20,40\n"
	_, err := p.Transform(context.Background(), mustRead(t, content), builtin(t, recipe.SleepBasic))
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "constant column scaled to undefined values")
	assert.Contains(t, out, `column="Stress Level"`)
	assert.NotContains(t, out, "column=Age")
	assert.NotContains(t, out, "level=DEBUG")
}
