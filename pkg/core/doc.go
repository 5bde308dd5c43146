// Package core defines the shared language of the LeapPrep system.
//
// This package contains:
//   - The tabular data model (Table, Column, Kind)
//   - Value formatting and parsing shared by loaders and writers
//   - The error taxonomy (MissingColumnError, TypeConversionError, IOError)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
