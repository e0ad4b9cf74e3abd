package reconcile

import (
	"github.com/xuri/excelize/v2"
)

// DefaultFillColor marks price cells whose pricing was confirmed
const DefaultFillColor = "#228B22"

// Styler registers the cell styles the writer applies
type Styler struct {
	File *excelize.File

	PriceOKStyle int // solid fill on a confirmed price cell
	NameStyle    int // bold product name
	PlainStyle   int // no formatting, used when clearing
}

// NewStyler registers the styles on f. excelize reuses an identical style
// record, so registering on every run does not grow the workbook.
func NewStyler(f *excelize.File, fillColor string) (*Styler, error) {
	if fillColor == "" {
		fillColor = DefaultFillColor
	}
	s := &Styler{File: f}
	var err error

	s.PriceOKStyle, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillColor}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	s.NameStyle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	s.PlainStyle, err = f.NewStyle(&excelize.Style{})
	if err != nil {
		return nil, err
	}

	return s, nil
}
