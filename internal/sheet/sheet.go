// Package sheet reads the authoritative product workbook
package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"pdp-recon/internal/model"
)

// Workbook is a read view over one spreadsheet file
type Workbook struct {
	file *excelize.File
	path string
}

// Open opens the workbook at path
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook %s: %v", model.ErrIO, path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Path returns the file the workbook was opened from
func (w *Workbook) Path() string { return w.path }

// HasSheet reports whether a sheet named name exists
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx != -1
}

// Resolve returns name when it exists and the first sheet otherwise
func (w *Workbook) Resolve(name string) string {
	if name != "" && w.HasSheet(name) {
		return name
	}
	sheets := w.file.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	return sheets[0]
}

// Rows returns the raw grid of a sheet. Row i of the result is spreadsheet
// row i+1; trailing empty cells are not included.
func (w *Workbook) Rows(name string) ([][]string, error) {
	rows, err := w.file.GetRows(w.Resolve(name))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", model.ErrIO, name, err)
	}
	return rows, nil
}

// HeaderRow returns the last header row, the one carrying column names
func (w *Workbook) HeaderRow(name string, headerRows int) ([]string, error) {
	rows, err := w.Rows(name)
	if err != nil {
		return nil, err
	}
	if headerRows < 1 || len(rows) < headerRows {
		return nil, fmt.Errorf("%w: sheet %q has no header row %d", model.ErrConfiguration, w.Resolve(name), headerRows)
	}
	return rows[headerRows-1], nil
}

// Cell returns the trimmed value at the 1-based row and column
func Cell(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) {
		return ""
	}
	r := rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return strings.TrimSpace(r[col-1])
}
