// Package sheettest builds fixture workbooks for tests
package sheettest

import (
	"github.com/xuri/excelize/v2"
)

// Headers is a representative header row: the MD Price and note columns
// repeat the way the CAN sheets carry them.
var Headers = []string{
	"ID", "Notes", "Ecomm Name", "FR Ecomm Name", "Colour Description", "Size Run",
	"MD PID", "REG PID", "Reg Price", "MD Price", "MD Price", "Images",
	"Price Notes", "Size Notes", "Catalogue Ops", "Photo studio", "WWMT Content", "Other",
	"Price Notes", "Size Notes", "Catalogue Ops", "Photo studio", "WWMT Content", "Other",
}

// Write saves a workbook with one sheet: a banner row, the header row and
// the given data rows.
func Write(path, sheet string, header []string, data [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err := f.SetCellValue(sheet, "A1", "Product validation"); err != nil {
		return err
	}
	rows := append([][]string{header}, data...)
	for i, row := range rows {
		for j, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

// Row builds a data row aligned with Headers from column values keyed by
// zero-based position.
func Row(values map[int]string) []string {
	row := make([]string, len(Headers))
	for i, v := range values {
		row[i] = v
	}
	return row
}
