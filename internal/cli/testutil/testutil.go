// Package testutil holds fixtures and renderer helpers for CLI tests.
package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapprep/internal/cli/output"
)

// SleepCSV is a small sleep-quality dataset with every column the built-in
// recipes use. Row 5 has a screen time above the last bin boundary.
const SleepCSV = `Date,Person_ID,Age,Gender,Sleep Start Time,Sleep End Time,Total Sleep Hours,Sleep Quality,Exercise (mins/day),Caffeine Intake (mg),Screen Time Before Bed (mins),Work Hours (hrs/day),Productivity Score,Mood Score,Stress Level
2024-01-01,1,25,Male,23.5,7.0,7.5,8,30,100,45,8.0,7,4,7
2024-01-02,2,31,Female,22.0,6.5,8.5,6,0,50,120,9.5,6,7,3
2024-01-03,3,44,Other,0.5,7.25,6.75,3,60,0,15,7.0,8,10,0
2024-01-04,4,28,Male,23.0,6.0,7.0,10,15,200,60,10.0,5,0,10
2024-01-05,5,39,Female,21.5,5.5,8.0,5,45,150,200,6.5,9,6,5
`

// SetupTestInput writes SleepCSV to a temporary directory and returns its path.
func SetupTestInput(t *testing.T) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), "sleep.csv", SleepCSV)
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ReadCSV reads a CSV file into its header and records.
func ReadCSV(t *testing.T, path string) (header []string, records [][]string) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	if len(all) == 0 {
		t.Fatalf("%s is empty", path)
	}
	return all[0], all[1:]
}

// TestRenderer is a Renderer whose output is captured in buffers.
type TestRenderer struct {
	*output.Renderer
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

// NewTestRenderer returns a capturing renderer for mode. isTTY controls
// whether ModeAuto resolves to text or markdown and whether styles apply.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		out:      out,
		errOut:   errOut,
	}
}

// NewTestRendererText renders styled text as on a terminal.
func NewTestRendererText() *TestRenderer { return NewTestRenderer(output.ModeText, true) }

// NewTestRendererMarkdown renders markdown as when piped.
func NewTestRendererMarkdown() *TestRenderer { return NewTestRenderer(output.ModeMarkdown, false) }

// NewTestRendererJSON renders JSON.
func NewTestRendererJSON() *TestRenderer { return NewTestRenderer(output.ModeJSON, false) }

// Output returns what was written to stdout.
func (tr *TestRenderer) Output() string { return tr.out.String() }

// ErrorOutput returns what was written to stderr.
func (tr *TestRenderer) ErrorOutput() string { return tr.errOut.String() }

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertValidMarkdown fails when md has unbalanced code fences or a heading
// without text.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d", n)
	}
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty heading at line %d: %q", i+1, line)
		}
	}
}

// AssertOutputMode fails when piped modes (markdown, JSON) produced ANSI
// escape codes on either stream.
func AssertOutputMode(t *testing.T, tr *TestRenderer, mode output.OutputMode) {
	t.Helper()

	if mode == output.ModeText {
		return
	}
	if all := tr.Output() + tr.ErrorOutput(); ansiPattern.MatchString(all) {
		t.Errorf("%s output contains ANSI escape codes: %q", mode, all)
	}
}
