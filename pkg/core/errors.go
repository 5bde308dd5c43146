package core

import (
	"fmt"
	"strings"
)

// MissingColumnError is returned when a stage references a column the table
// does not contain.
type MissingColumnError struct {
	Column    string
	Stage     string
	Available []string
}

func (e *MissingColumnError) Error() string {
	var b strings.Builder
	if e.Stage != "" {
		fmt.Fprintf(&b, "%s: ", e.Stage)
	}
	fmt.Fprintf(&b, "column %q not found", e.Column)
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, "\nAvailable columns: %s", strings.Join(e.Available, ", "))
	}
	return b.String()
}

// TypeConversionError is returned when a value cannot be read as a number.
type TypeConversionError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot convert %q to a number", e.Column, e.Row+1, e.Value)
}

// Unwrap returns the underlying parse error.
func (e *TypeConversionError) Unwrap() error { return e.Err }

// IOError is returned when an input cannot be read or an output cannot be
// written.
type IOError struct {
	Op   string // read, write, mkdir
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *IOError) Unwrap() error { return e.Err }
