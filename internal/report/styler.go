package report

import (
	"github.com/xuri/excelize/v2"
)

// Styler handles Excel styling
type Styler struct {
	File *excelize.File

	// Pre-defined styles
	HeaderStyle  int
	AlertStyle   int
	NotesStyle   int
	DefaultStyle int
}

// NewStyler creates a new Styler and explicitly registers styles
func NewStyler(f *excelize.File) (*Styler, error) {
	s := &Styler{File: f}
	var err error

	// Header Style: Bold, Gray Background, Center Aligned
	s.HeaderStyle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#000000"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    createBorder(),
	})
	if err != nil {
		return nil, err
	}

	// Alert Style: Red text for incorrect pricing
	s.AlertStyle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#D32F2F"},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    createBorder(),
	})
	if err != nil {
		return nil, err
	}

	// Notes Style: wrapped, top aligned
	s.NotesStyle, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    createBorder(),
	})
	if err != nil {
		return nil, err
	}

	// Default Style
	s.DefaultStyle, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    createBorder(),
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

func createBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "D4D4D4", Style: 1},
		{Type: "top", Color: "D4D4D4", Style: 1},
		{Type: "bottom", Color: "D4D4D4", Style: 1},
		{Type: "right", Color: "D4D4D4", Style: 1},
	}
}
