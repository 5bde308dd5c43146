// Package prep implements the tabular preprocessing pipeline.
//
// A run loads a table, then applies a fixed sequence of stages:
//
//  1. Drop   - remove unused columns (absent columns are ignored)
//  2. Bin    - bucket numeric columns into ordered labels
//  3. Encode - map categorical values to contiguous integer codes
//  4. Scale  - standardize numeric columns to zero mean, unit variance
//
// and finally persists the table as CSV next to a JSON file holding the
// encoder mappings. Every stage takes a table and returns a new one; the
// input table is never modified, so intermediate tables remain valid for
// inspection after a later stage fails.
package prep
