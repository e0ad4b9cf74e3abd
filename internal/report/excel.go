package report

import (
	"fmt"
	"strings"

	"pdp-recon/internal/config"
	"pdp-recon/internal/model"

	"github.com/xuri/excelize/v2"
)

// Report sheet names
const (
	OverviewSheet = "Overview"
	FindingsSheet = "Findings"
)

// ExcelExporter writes the findings workbook
type ExcelExporter struct {
	// Stateless
}

// NewExcelExporter creates a new ExcelExporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Export generates the Excel report
func (e *ExcelExporter) Export(summary *model.Summary, cfg *config.Config) error {
	outputFile := cfg.GetOutputPath("xlsx")
	f := excelize.NewFile()
	defer f.Close()

	styler, err := NewStyler(f)
	if err != nil {
		return err
	}

	// 1. Create Overview Sheet
	if err := e.writeOverview(f, styler, summary); err != nil {
		return err
	}

	// 2. Create Findings Sheet
	if err := e.writeFindings(f, styler, summary); err != nil {
		return err
	}

	// Remove default "Sheet1"
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx != -1 {
		f.DeleteSheet("Sheet1")
	}

	// Save
	if err := f.SaveAs(outputFile); err != nil {
		return fmt.Errorf("failed to save Excel report: %w", err)
	}

	return nil
}

// --- Overview Sheet Logic ---

func (e *ExcelExporter) writeOverview(f *excelize.File, s *Styler, summary *model.Summary) error {
	sheet := OverviewSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	// Section A: Run Summary
	row := 1
	e.writeRow(f, sheet, row, []string{"Metric", "Value"}, s.HeaderStyle)
	row++

	metrics := []struct {
		Key string
		Val any
	}{
		{"Report Date", summary.ReportDate},
		{"Section", string(summary.Section)},
		{"Region", string(summary.Region)},
		{"Products Checked", summary.TotalProducts},
		{"Products With Notes", summary.ProductsWithNotes},
		{"Incorrect Pricing", len(summary.IncorrectPricing)},
	}

	for _, m := range metrics {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), m.Key)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), m.Val)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), s.DefaultStyle)
		row++
	}

	row += 2 // Spacer

	// Section B: Notes per category
	e.writeRow(f, sheet, row, []string{"Note Column", "Products"}, s.HeaderStyle)
	row++
	for _, c := range summary.CategoryCounts {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), c.Header)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), c.Count)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), s.DefaultStyle)
		row++
	}

	// Adjust column widths
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 20)

	return nil
}

// --- Findings Sheet Logic ---

func (e *ExcelExporter) writeFindings(f *excelize.File, s *Styler, summary *model.Summary) error {
	sheet := FindingsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Product ID", "Pricing Correct"}
	for _, c := range model.Categories {
		headers = append(headers, c.Header())
	}
	e.writeRow(f, sheet, 1, headers, s.HeaderStyle)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	row := 2
	for i := range summary.Findings {
		fd := &summary.Findings[i]
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fd.ProductID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), yesNo(fd.PricingCorrect))
		for j, c := range model.Categories {
			cell, _ := excelize.CoordinatesToCellName(j+3, row)
			f.SetCellValue(sheet, cell, strings.TrimSpace(fd.Note(c)))
		}

		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), s.NotesStyle)
		if !fd.PricingCorrect {
			f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), s.AlertStyle)
		}
		row++
	}

	f.SetColWidth(sheet, "A", "B", 16)
	f.SetColWidth(sheet, "C", lastCol, 40)

	return nil
}

func (e *ExcelExporter) writeRow(f *excelize.File, sheet string, row int, values []string, style int) {
	for i, val := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, val)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
