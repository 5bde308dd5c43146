package recipe

import (
	"fmt"
	"sort"
)

// Built-in recipe names.
const (
	Sleep        = "sleep"
	SleepBasic   = "sleep-basic"
	SleepMinimal = "sleep-minimal"

	// Default is used when no recipe is configured.
	Default = Sleep
)

// Column names of the sleep-quality dataset.
const (
	colMoodScore      = "Mood Score"
	colStressLevel    = "Stress Level"
	colScreenTime     = "Screen Time Before Bed (mins)"
	colSleepQuality   = "Sleep Quality"
	colSleepQualityCa = "Sleep Quality Category"
)

var (
	levelBounds = []float64{0, 4, 7, 10}
	levelLabels = []string{"Low", "Medium", "High"}

	screenBounds = []float64{0, 30, 60, 180}
	screenLabels = []string{"<30 menit", "30–60 menit", ">60 menit"}

	sleepDrop = []string{
		"Date", "Person_ID", "Gender",
		"Productivity Score", "Exercise (mins/day)", "Caffeine Intake (mg)",
	}

	sleepScale = []string{
		"Age", "Sleep Start Time", "Sleep End Time",
		"Total Sleep Hours", colScreenTime,
		"Work Hours (hrs/day)", colStressLevel, colMoodScore,
	}
)

func levelRule(column, target string) BinningRule {
	return BinningRule{
		Column: column,
		Target: target,
		Bounds: append([]float64(nil), levelBounds...),
		Labels: append([]string(nil), levelLabels...),
	}
}

func sleepBins() []BinningRule {
	return []BinningRule{
		levelRule(colMoodScore, ""),
		levelRule(colStressLevel, ""),
		{
			Column: colScreenTime,
			Bounds: append([]float64(nil), screenBounds...),
			Labels: append([]string(nil), screenLabels...),
		},
	}
}

// builtins returns fresh copies so callers may modify the result.
func builtins() map[string]*Recipe {
	quality := levelRule(colSleepQuality, colSleepQualityCa)
	quality.Optional = true

	full := &Recipe{
		Name:        Sleep,
		Description: "Sleep quality dataset with derived sleep quality category",
		Drop:        append([]string(nil), sleepDrop...),
		Bins:        append(sleepBins(), quality),
		Encode: append(
			Required(colMoodScore, colStressLevel, colScreenTime),
			ColumnSpec{Name: colSleepQualityCa, Optional: true},
		),
		Scale:         Optional(sleepScale...),
		WriteEncoders: true,
	}

	basic := &Recipe{
		Name:          SleepBasic,
		Description:   "Sleep quality dataset, binned levels only",
		Drop:          append([]string(nil), sleepDrop...),
		Bins:          sleepBins(),
		Encode:        Required(colMoodScore, colStressLevel, colScreenTime),
		Scale:         Optional(sleepScale...),
		WriteEncoders: true,
	}

	minimal := &Recipe{
		Name:        SleepMinimal,
		Description: "Sleep quality dataset written to a fixed path without encoders",
		Drop:        append([]string(nil), sleepDrop...),
		Bins:        sleepBins(),
		Encode:      Required(colMoodScore, colStressLevel, colScreenTime),
		Scale:       Optional(sleepScale...),
		Output:      "processed/sleep_preprocessed.csv",
	}

	return map[string]*Recipe{
		full.Name:    full,
		basic.Name:   basic,
		minimal.Name: minimal,
	}
}

// Builtin returns a built-in recipe by name.
func Builtin(name string) (*Recipe, bool) {
	r, ok := builtins()[name]
	return r, ok
}

// BuiltinNames returns the built-in recipe names (sorted).
func BuiltinNames() []string {
	names := make([]string, 0, 3)
	for name := range builtins() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog resolves recipe names against the built-ins and user-defined
// recipes. User recipes shadow built-ins of the same name.
type Catalog struct {
	custom map[string]*Recipe
}

// NewCatalog creates a catalog from user-defined recipes keyed by name.
func NewCatalog(custom map[string]Recipe) *Catalog {
	c := &Catalog{custom: make(map[string]*Recipe, len(custom))}
	for name, r := range custom {
		r.Name = name
		c.custom[name] = &r
	}
	return c
}

// Get returns a validated recipe by name.
func (c *Catalog) Get(name string) (*Recipe, error) {
	if name == "" {
		name = Default
	}
	r, ok := c.custom[name]
	if !ok {
		r, ok = Builtin(name)
	}
	if !ok {
		return nil, &UnknownRecipeError{Name: name, Available: c.Names()}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Names returns every resolvable recipe name (sorted).
func (c *Catalog) Names() []string {
	seen := make(map[string]bool)
	for _, n := range BuiltinNames() {
		seen[n] = true
	}
	for n := range c.custom {
		seen[n] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsCustom reports whether name refers to a user-defined recipe.
func (c *Catalog) IsCustom(name string) bool {
	_, ok := c.custom[name]
	return ok
}

// UnknownRecipeError is returned when a recipe name cannot be resolved.
type UnknownRecipeError struct {
	Name      string
	Available []string
}

func (e *UnknownRecipeError) Error() string {
	return fmt.Sprintf("unknown recipe %q\nAvailable recipes: %v\nHint: Define it under recipes: in leapprep.yaml", e.Name, e.Available)
}
