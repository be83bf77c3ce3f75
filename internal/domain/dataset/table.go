// Package dataset models the tabular training data the trainer consumes.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Sentinel errors for tables.
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyTable     = errors.New("table has no rows")
)

// Source loads a table from somewhere.
type Source interface {
	Load(ctx context.Context) (*Table, error)
}

// Warning records a non-fatal problem found while loading a row.
type Warning struct {
	Row     int    `json:"row" yaml:"row"`
	Message string `json:"message" yaml:"message"`
}

// Table is a header plus rectangular string rows. Missing cells are "".
type Table struct {
	Headers  []string
	Rows     [][]string
	Warnings []Warning

	index map[string]int
}

// NewTable builds a table, padding short rows and truncating long ones.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{Headers: slices.Clone(headers)}
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

// Append adds a row, padding or truncating it to the header width.
func (t *Table) Append(row []string) {
	out := make([]string, len(t.Headers))
	copy(out, row)
	t.Rows = append(t.Rows, out)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column name.
func (t *Table) Index(name string) (int, bool) {
	if t.index == nil || len(t.index) != len(t.Headers) {
		t.index = make(map[string]int, len(t.Headers))
		for i, h := range t.Headers {
			if _, dup := t.index[h]; !dup {
				t.index[h] = i
			}
		}
	}
	i, ok := t.index[name]
	return i, ok
}

// Column returns the raw values of name, trimmed.
func (t *Table) Column(name string) ([]string, error) {
	i, ok := t.Index(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = strings.TrimSpace(row[i])
	}
	return out, nil
}

// Distinct returns the sorted distinct values of name. Empty cells are kept
// as "" so callers decide how to label missing data.
func (t *Table) Distinct(name string) ([]string, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	slices.Sort(col)
	return slices.Compact(col), nil
}

// Numeric parses name as floats. Empty or unparseable cells become NaN.
func (t *Table) Numeric(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = parseFloat(v)
	}
	return out, nil
}

// IsNumeric reports whether every non-empty cell of name parses as a finite
// number and at least one cell is non-empty.
func (t *Table) IsNumeric(name string) bool {
	col, err := t.Column(name)
	if err != nil {
		return false
	}
	seen := false
	for _, v := range col {
		if v == "" {
			continue
		}
		if math.IsNaN(parseFloat(v)) {
			return false
		}
		seen = true
	}
	return seen
}

// Categorical returns the non-numeric columns in header order.
func (t *Table) Categorical() []string {
	var out []string
	for _, h := range t.Headers {
		if !t.IsNumeric(h) {
			out = append(out, h)
		}
	}
	return out
}

func parseFloat(v string) float64 {
	if v == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}
