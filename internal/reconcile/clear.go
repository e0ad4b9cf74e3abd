package reconcile

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"pdp-recon/internal/headers"
	"pdp-recon/internal/model"
)

// Clear resets the data rows of sheet before a new crawl cycle: every
// occurrence of the note columns loses its text and comments, and every
// price column loses its highlight. Header rows are left untouched.
// It returns the number of cells cleared.
func Clear(ctx context.Context, path, sheet string, hm headers.Map, opts Options) (int, error) {
	if opts.HeaderRows <= 0 {
		opts.HeaderRows = 2
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to open workbook %s: %v", model.ErrIO, path, err)
	}
	defer f.Close()

	sheet = resolveSheet(f, sheet)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read sheet %q: %v", model.ErrIO, sheet, err)
	}
	styler, err := NewStyler(f, opts.FillColor)
	if err != nil {
		return 0, fmt.Errorf("failed to register styles: %w", err)
	}

	var noteCols, priceCols []int
	for _, c := range model.Categories {
		noteCols = append(noteCols, columns(hm, c.Header())...)
	}
	priceCols = columns(hm, opts.PriceHeader)
	if len(noteCols) == 0 {
		return 0, fmt.Errorf("%w: %w: no note columns in header map", model.ErrConfiguration, model.ErrHeaderNotFound)
	}

	commented := make(map[string]bool)
	if comments, err := f.GetComments(sheet); err == nil {
		for _, c := range comments {
			commented[c.Cell] = true
		}
	}

	cleared := 0
	for rowNum := opts.HeaderRows + 1; rowNum <= len(rows); rowNum++ {
		if err := ctx.Err(); err != nil {
			return cleared, err
		}
		for _, col := range noteCols {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			if v, _ := f.GetCellValue(sheet, cell); v != "" {
				if err := f.SetCellValue(sheet, cell, nil); err != nil {
					return cleared, fmt.Errorf("failed to clear %s: %w", cell, err)
				}
				cleared++
			}
			if commented[cell] {
				if err := f.DeleteComment(sheet, cell); err != nil {
					return cleared, fmt.Errorf("failed to delete comment %s: %w", cell, err)
				}
			}
		}
		for _, col := range priceCols {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			if err := f.SetCellStyle(sheet, cell, cell, styler.PlainStyle); err != nil {
				return cleared, fmt.Errorf("failed to reset style of %s: %w", cell, err)
			}
		}
	}

	if err := f.Save(); err != nil {
		return cleared, fmt.Errorf("%w: failed to save workbook %s: %v", model.ErrIO, path, err)
	}
	return cleared, nil
}

// columns returns every 1-based column carrying header
func columns(hm headers.Map, header string) []int {
	var cols []int
	for i := 0; i < hm.Count(header); i++ {
		if c, err := hm.Column(header, i); err == nil {
			cols = append(cols, c)
		}
	}
	return cols
}
