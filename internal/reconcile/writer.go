// Package reconcile merges accumulated findings back into the product
// workbook.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"pdp-recon/internal/findings"
	"pdp-recon/internal/headers"
	"pdp-recon/internal/logger"
	"pdp-recon/internal/model"
	"pdp-recon/internal/notes"
	sheetpkg "pdp-recon/internal/sheet"
)

// Options selects the columns and formatting of one reconcile pass
type Options struct {
	HeaderRows     int
	NoteOccurrence int

	PriceHeader     string
	PriceOccurrence int
	NameHeader      string
	FillColor       string

	// SkipHighlight disables price and name formatting (secondary locales)
	SkipHighlight bool
}

// DefaultOptions returns the options for the standard sheet layout
func DefaultOptions() Options {
	return Options{
		HeaderRows:  2,
		PriceHeader: model.HeaderMDPrice,
		NameHeader:  model.HeaderEcommName,
		FillColor:   DefaultFillColor,
	}
}

// RowError is a failed write to one row
type RowError struct {
	Row    int
	Header string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Header, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Result summarises a reconcile pass
type Result struct {
	RowsProcessed  int
	CellsAppended  int
	CellsUnchanged int
	Highlighted    int
	RowErrors      []*RowError
}

// Writer merges a findings snapshot into a workbook
type Writer struct {
	headers headers.Map
	opts    Options
}

// NewWriter creates a writer resolving columns through hm
func NewWriter(hm headers.Map, opts Options) *Writer {
	if opts.HeaderRows <= 0 {
		opts.HeaderRows = 2
	}
	return &Writer{headers: hm, opts: opts}
}

// column is a resolved destination, or the reason it could not be resolved
type column struct {
	header string
	index  int
	err    error
}

func (w *Writer) resolve(header string, occurrence int) column {
	idx, err := w.headers.Column(header, occurrence)
	return column{header: header, index: idx, err: err}
}

// Reconcile appends every finding's notes to its row and formats the rows
// whose pricing was not disputed. Failed writes are collected per row; the
// workbook is saved once at the end with everything that did apply.
func (w *Writer) Reconcile(ctx context.Context, snapshot []model.Finding, path, sheet string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook %s: %v", model.ErrIO, path, err)
	}
	defer f.Close()

	sheet = resolveSheet(f, sheet)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", model.ErrIO, sheet, err)
	}

	styler, err := NewStyler(f, w.opts.FillColor)
	if err != nil {
		return nil, fmt.Errorf("failed to register styles: %w", err)
	}

	noteCols := make(map[model.Category]column, len(model.Categories))
	for _, c := range model.Categories {
		noteCols[c] = w.resolve(c.Header(), w.opts.NoteOccurrence)
		if noteCols[c].err != nil {
			logger.Warn("Note column for %s unavailable: %v", c, noteCols[c].err)
		}
	}
	priceCol := w.resolve(w.opts.PriceHeader, w.opts.PriceOccurrence)
	nameCol := w.resolve(w.opts.NameHeader, 0)

	byID := findings.Index(snapshot)

	res := &Result{}
	fail := func(row int, col column, err error) {
		res.RowErrors = append(res.RowErrors, &RowError{Row: row, Header: col.header, Err: err})
	}

	for rowNum := w.opts.HeaderRows + 1; rowNum <= len(rows); rowNum++ {
		if err := ctx.Err(); err != nil {
			fail(rowNum, column{}, err)
			break
		}
		res.RowsProcessed++
		finding := byID[rowNum-w.opts.HeaderRows]

		if finding != nil {
			for _, c := range model.Categories {
				frags := finding.Fragments(c)
				if len(frags) == 0 {
					continue
				}
				col := noteCols[c]
				if col.err != nil {
					fail(rowNum, col, col.err)
					continue
				}
				changed, err := appendNote(f, sheet, rowNum, col.index, frags)
				if err != nil {
					fail(rowNum, col, err)
					continue
				}
				if changed {
					res.CellsAppended++
				} else {
					res.CellsUnchanged++
				}
			}
		}

		if w.opts.SkipHighlight || (finding != nil && !finding.PricingCorrect) {
			continue
		}
		// spacer rows carry no product
		if nameCol.err == nil && sheetpkg.Cell(rows, rowNum, nameCol.index) == "" {
			continue
		}
		if err := w.highlight(f, styler, sheet, rowNum, priceCol, nameCol, fail); err == nil {
			res.Highlighted++
		}
	}

	// one save of everything that applied, even when some rows failed
	if err := f.Save(); err != nil {
		return res, fmt.Errorf("%w: failed to save workbook %s: %v", model.ErrIO, path, err)
	}

	if len(res.RowErrors) > 0 {
		errs := make([]error, len(res.RowErrors))
		for i, e := range res.RowErrors {
			errs[i] = e
		}
		return res, fmt.Errorf("%d row write(s) failed: %w", len(errs), errors.Join(errs...))
	}
	return res, nil
}

func (w *Writer) highlight(f *excelize.File, s *Styler, sheet string, row int, price, name column, fail func(int, column, error)) error {
	var failed error
	for _, target := range []struct {
		col   column
		style int
	}{
		{price, s.PriceOKStyle},
		{name, s.NameStyle},
	} {
		if target.col.err != nil {
			fail(row, target.col, target.col.err)
			failed = target.col.err
			continue
		}
		cell, err := excelize.CoordinatesToCellName(target.col.index, row)
		if err == nil {
			err = f.SetCellStyle(sheet, cell, cell, target.style)
		}
		if err != nil {
			fail(row, target.col, err)
			failed = err
		}
	}
	return failed
}

// appendNote adds each fragment to a note cell as its own line, applying the
// same suppression rules as the store. It reports whether the cell changed.
func appendNote(f *excelize.File, sheet string, row, col int, fragments []string) (bool, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	existing, err := f.GetCellValue(sheet, cell)
	if err != nil {
		return false, err
	}
	updated, changed := existing, false
	for _, frag := range fragments {
		var added bool
		if updated, added = notes.AppendLine(updated, frag); added {
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	return true, f.SetCellValue(sheet, cell, updated)
}

func resolveSheet(f *excelize.File, name string) string {
	if name != "" {
		if idx, err := f.GetSheetIndex(name); err == nil && idx != -1 {
			return name
		}
		logger.Warn("Sheet %q not found, falling back to the first sheet", name)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	return sheets[0]
}
