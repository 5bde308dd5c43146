package core

import (
	"math"
	"strconv"
	"strings"
)

// MissingLabel is the category label given to missing values when a column
// is stringified for encoding.
const MissingLabel = "nan"

// DefaultNAValues are the tokens read as missing values, in addition to the
// empty string. They follow the conventions of common dataframe libraries.
var DefaultNAValues = []string{
	"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// FormatInt formats an integer in base 10.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatFloat formats a float as the shortest representation that round-trips,
// always keeping a fractional part for finite values in positional notation
// ("4.0", "0.25") and switching to exponent notation outside [1e-4, 1e16).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(f)
	if abs < 1e-4 || abs >= 1e16 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseNumber parses a decimal or scientific number, ignoring surrounding
// whitespace.
func ParseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
