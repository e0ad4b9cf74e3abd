package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xuri/excelize/v2"

	"pdp-recon/internal/headers"
	"pdp-recon/internal/model"
	"pdp-recon/internal/notes"
)

// issue is a note line that repeats an earlier line of the same cell
type issue struct {
	Sheet string
	Cell  string
	Line  string
}

func main() {
	headerRows := flag.Int("header-rows", 2, "Rows above the data; the last one carries column names")
	sheetName := flag.String("sheet", "", "Sheet to check (default: every sheet)")
	flag.Parse()

	// Check which file to verify
	filename := "data/products.xlsx"
	if flag.NArg() > 0 {
		filename = flag.Arg(0)
	}

	// Open the Excel file
	f, err := excelize.OpenFile(filename)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if *sheetName != "" {
		sheets = []string{*sheetName}
	}

	fmt.Printf("=== DUPLICATE NOTE CHECK: %s ===\n", filename)

	var issues []issue
	for _, sheet := range sheets {
		found, checked, err := audit(f, sheet, *headerRows)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Sheet %-20s %d note cells checked\n", sheet, checked)
		issues = append(issues, found...)
	}

	for _, is := range issues {
		fmt.Printf("❌ DUPLICATE at %s!%s: %q\n", is.Sheet, is.Cell, is.Line)
	}

	if len(issues) > 0 {
		fmt.Printf("❌ FAILED: Found %d duplicate note lines!\n", len(issues))
		os.Exit(1)
	}
	fmt.Printf("✅ PASSED: No duplicate note lines found!\n")
}

// audit scans every note column of sheet. A line is a duplicate when the
// lines above it in the same cell already cover it, including the
// locale-suffixed form of an earlier line.
func audit(f *excelize.File, sheet string, headerRows int) ([]issue, int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) < headerRows || headerRows < 1 {
		return nil, 0, nil
	}

	hm := headers.Build(rows[headerRows-1])
	var cols []int
	for _, c := range model.Categories {
		cols = append(cols, hm[headers.Normalize(c.Header())]...)
	}

	var (
		issues  []issue
		checked int
	)
	for r := headerRows; r < len(rows); r++ {
		for _, col := range cols {
			if col >= len(rows[r]) || rows[r][col] == "" {
				continue
			}
			checked++

			var seen []string
			for _, line := range notes.Lines(rows[r][col]) {
				if notes.Suppressed(seen, line) {
					cell, _ := excelize.CoordinatesToCellName(col+1, r+1)
					issues = append(issues, issue{Sheet: sheet, Cell: cell, Line: line})
					continue
				}
				seen = append(seen, line)
			}
		}
	}
	return issues, checked, nil
}
