// Package headers resolves spreadsheet header rows into column positions
// and persists the resolved map so parallel check processes never re-parse
// the workbook.
package headers

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"pdp-recon/internal/model"
)

// Map maps a normalized header to every zero-based column it occupies,
// left to right. Duplicated headers (locale-specific price columns, a
// second block of note columns) are told apart by occurrence index.
type Map map[string][]int

// Normalize trims and case-folds header text.
// A Caser keeps state, so each call gets its own.
func Normalize(header string) string {
	return cases.Fold().String(strings.TrimSpace(header))
}

// Build parses a raw header row into a Map, skipping empty cells. Each
// normalized header keeps its zero-based positions in left-to-right order, so a
// repeated header resolves by occurrence.
func Build(headerRow []string) Map {
	m := make(Map)
	for col, cell := range headerRow {
		key := Normalize(cell)
		if key == "" {
			continue
		}
		m[key] = append(m[key], col)
	}
	return m
}

// Resolve returns the zero-based column of the given occurrence of header.
// It never defaults: a wrong column would corrupt unrelated data.
func (m Map) Resolve(header string, occurrence int) (int, error) {
	cols, ok := m[Normalize(header)]
	if !ok || len(cols) == 0 {
		return -1, fmt.Errorf("%w: %w: %q", model.ErrConfiguration, model.ErrHeaderNotFound, header)
	}
	if occurrence < 0 || occurrence >= len(cols) {
		return -1, fmt.Errorf("%w: %w: header %q has %d occurrence(s), requested index %d",
			model.ErrConfiguration, model.ErrOccurrenceOutOfRange, header, len(cols), occurrence)
	}
	return cols[occurrence], nil
}

// Column is Resolve converted to excelize's 1-based column number
func (m Map) Column(header string, occurrence int) (int, error) {
	col, err := m.Resolve(header, occurrence)
	if err != nil {
		return -1, err
	}
	return col + 1, nil
}

// Has reports whether header appears at least once
func (m Map) Has(header string) bool {
	return len(m[Normalize(header)]) > 0
}

// Count returns how many times header appears
func (m Map) Count(header string) int {
	return len(m[Normalize(header)])
}
