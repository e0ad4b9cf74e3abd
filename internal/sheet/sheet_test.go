package sheet

import (
	"errors"
	"path/filepath"
	"testing"

	"pdp-recon/internal/headers"
	"pdp-recon/internal/model"
	"pdp-recon/internal/sheet/sheettest"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.xlsx")
	data := [][]string{
		sheettest.Row(map[int]string{0: "1", 2: "Align Pant 25\"", 3: "Pantalon Align", 4: "Black", 5: "XS,S,M", 6: "LW5CT3S", 8: "98", 9: "69", 11: "Images Delivered"}),
		sheettest.Row(map[int]string{0: "2"}),
		sheettest.Row(map[int]string{0: "3", 2: "Define Jacket", 4: "Bone", 5: "4,6,8", 7: "LW4BXXS", 8: "118"}),
	}
	if err := sheettest.Write(path, "CAN Markdowns", sheettest.Headers, data); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestWorkbookReadsHeaderRow(t *testing.T) {
	wb, err := Open(writeFixture(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer wb.Close()

	if !wb.HasSheet("CAN Markdowns") {
		t.Error("expected sheet to exist")
	}
	if got := wb.Resolve("USA Markdowns"); got != "CAN Markdowns" {
		t.Errorf("Resolve fallback = %q, expected first sheet", got)
	}

	row, err := wb.HeaderRow("CAN Markdowns", 2)
	if err != nil {
		t.Fatalf("HeaderRow failed: %v", err)
	}
	if len(row) != len(sheettest.Headers) || row[2] != "Ecomm Name" {
		t.Errorf("unexpected header row %v", row)
	}

	if _, err := wb.HeaderRow("CAN Markdowns", 10); !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("missing header row should be a configuration error, got %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.xlsx")); !errors.Is(err, model.ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestParseRows(t *testing.T) {
	wb, err := Open(writeFixture(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer wb.Close()

	grid, _ := wb.Rows("CAN Markdowns")
	rows, err := ParseRows(grid, headers.Build(sheettest.Headers), 2)
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (blank row skipped), got %d", len(rows))
	}

	first := rows[0]
	if first.ProductID != 1 || first.RowNumber != 3 {
		t.Errorf("first row ids = %d/%d, expected 1/3", first.ProductID, first.RowNumber)
	}
	if first.DisplayName(model.RegionCANFR) != "Pantalon Align" || first.SizeRun != "XS,S,M" || first.MDPrice != "69" {
		t.Errorf("unexpected first row %+v", first)
	}
	if first.Images != "Images Delivered" {
		t.Errorf("Images = %q", first.Images)
	}

	second := rows[1]
	if second.ProductID != 3 || second.PID(model.SectionNewness) != "LW4BXXS" {
		t.Errorf("unexpected second row %+v", second)
	}
}

func TestParseRowsMissingHeaders(t *testing.T) {
	hm := headers.Build([]string{"ID", "Ecomm Name", "Reg Price"})
	_, err := ParseRows(nil, hm, 2)
	if !errors.Is(err, model.ErrHeaderNotFound) {
		t.Errorf("expected ErrHeaderNotFound, got %v", err)
	}
}
