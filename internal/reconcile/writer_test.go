package reconcile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"pdp-recon/internal/headers"
	"pdp-recon/internal/model"
	"pdp-recon/internal/sheet/sheettest"
)

const testSheet = "USA Markdowns"

func fixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.xlsx")
	data := [][]string{
		sheettest.Row(map[int]string{0: "1", 2: "Align Pant", 9: "69"}),
		sheettest.Row(map[int]string{0: "2", 2: "Define Jacket", 9: "99", 12: "Checked last week"}),
		sheettest.Row(map[int]string{0: "3", 2: "Scuba Hoodie", 9: "79"}),
	}
	if err := sheettest.Write(path, testSheet, sheettest.Headers, data); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func snapshot() []model.Finding {
	one := model.NewFinding(1)
	one.PriceNotes = " MD Price mismatch($59)"
	one.OtherNotes = " Ecomm Name mismatch(Align Pant 25)"
	one.PricingCorrect = false

	two := model.NewFinding(2)
	two.PhotoNotes = " Missing Images"
	two.PriceNotes = " Regular Price Range $59 - $79"

	return []model.Finding{*one, *two}
}

func cell(t *testing.T, f *excelize.File, col, row int) string {
	t.Helper()
	name, _ := excelize.CoordinatesToCellName(col, row)
	v, err := f.GetCellValue(testSheet, name)
	if err != nil {
		t.Fatalf("GetCellValue(%s) failed: %v", name, err)
	}
	return v
}

func styleOf(t *testing.T, f *excelize.File, col, row int) int {
	t.Helper()
	name, _ := excelize.CoordinatesToCellName(col, row)
	id, err := f.GetCellStyle(testSheet, name)
	if err != nil {
		t.Fatalf("GetCellStyle(%s) failed: %v", name, err)
	}
	return id
}

func TestReconcileAppendsNotes(t *testing.T) {
	path := fixture(t)
	w := NewWriter(headers.Build(sheettest.Headers), DefaultOptions())

	res, err := w.Reconcile(context.Background(), snapshot(), path, testSheet)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.RowsProcessed != 3 || res.CellsAppended != 4 {
		t.Errorf("unexpected result %+v", res)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tests := []struct {
		col, row int
		want     string
	}{
		{13, 3, "MD Price mismatch($59)"},
		{18, 3, "Ecomm Name mismatch(Align Pant 25)"},
		{13, 4, "Checked last week\nRegular Price Range $59 - $79"},
		{16, 4, "Missing Images"},
		{13, 5, ""},
		{19, 3, ""}, // second note block untouched at occurrence 0
	}
	for _, tt := range tests {
		if got := cell(t, f, tt.col, tt.row); got != tt.want {
			t.Errorf("cell(%d,%d) = %q, expected %q", tt.col, tt.row, got, tt.want)
		}
	}
	if got := cell(t, f, 1, 2); got != "ID" {
		t.Errorf("header row modified: %q", got)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	path := fixture(t)
	w := NewWriter(headers.Build(sheettest.Headers), DefaultOptions())
	ctx := context.Background()

	if _, err := w.Reconcile(ctx, snapshot(), path, testSheet); err != nil {
		t.Fatalf("first Reconcile failed: %v", err)
	}
	first := readNotes(t, path)

	res, err := w.Reconcile(ctx, snapshot(), path, testSheet)
	if err != nil {
		t.Fatalf("second Reconcile failed: %v", err)
	}
	if res.CellsAppended != 0 || res.CellsUnchanged != 4 {
		t.Errorf("second pass should change nothing, got %+v", res)
	}
	second := readNotes(t, path)

	for k, v := range first {
		if second[k] != v {
			t.Errorf("cell %s changed from %q to %q", k, v, second[k])
		}
	}
}

func readNotes(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	out := make(map[string]string)
	for row := 3; row <= 5; row++ {
		for col := 13; col <= 24; col++ {
			name, _ := excelize.CoordinatesToCellName(col, row)
			out[name], _ = f.GetCellValue(testSheet, name)
		}
	}
	return out
}

func TestReconcileHighlightsConfirmedRows(t *testing.T) {
	path := fixture(t)
	w := NewWriter(headers.Build(sheettest.Headers), DefaultOptions())

	res, err := w.Reconcile(context.Background(), snapshot(), path, testSheet)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	// row 3 disputed; row 4 confirmed; row 5 has no finding
	if res.Highlighted != 2 {
		t.Errorf("Highlighted = %d, expected 2", res.Highlighted)
	}

	f, _ := excelize.OpenFile(path)
	defer f.Close()

	if styleOf(t, f, 10, 3) != 0 {
		t.Error("disputed price cell should not be highlighted")
	}
	priceStyle := styleOf(t, f, 10, 4)
	if priceStyle == 0 || styleOf(t, f, 10, 5) != priceStyle {
		t.Error("confirmed and unchecked rows should share the price highlight")
	}
	style, err := f.GetStyle(styleOf(t, f, 3, 4))
	if err != nil || style.Font == nil || !style.Font.Bold {
		t.Error("name cell should be bold")
	}
}

func TestReconcileSkipHighlight(t *testing.T) {
	path := fixture(t)
	opts := DefaultOptions()
	opts.SkipHighlight = true

	res, err := NewWriter(headers.Build(sheettest.Headers), opts).Reconcile(context.Background(), snapshot(), path, testSheet)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Highlighted != 0 {
		t.Errorf("Highlighted = %d, expected 0", res.Highlighted)
	}
}

func TestReconcileSecondNoteBlock(t *testing.T) {
	path := fixture(t)
	opts := DefaultOptions()
	opts.NoteOccurrence = 1

	if _, err := NewWriter(headers.Build(sheettest.Headers), opts).Reconcile(context.Background(), snapshot(), path, testSheet); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	f, _ := excelize.OpenFile(path)
	defer f.Close()
	if got := cell(t, f, 19, 3); got != "MD Price mismatch($59)" {
		t.Errorf("second Price Notes column = %q", got)
	}
	if got := cell(t, f, 13, 3); got != "" {
		t.Errorf("first Price Notes column should be untouched, got %q", got)
	}
}

func TestReconcileMissingColumnFailsOnlyAffectedRows(t *testing.T) {
	path := fixture(t)
	hm := headers.Build(sheettest.Headers)
	delete(hm, headers.Normalize(model.HeaderPhotoStudio))

	res, err := NewWriter(hm, DefaultOptions()).Reconcile(context.Background(), snapshot(), path, testSheet)
	if err == nil {
		t.Fatal("expected row errors")
	}
	if !errors.Is(err, model.ErrHeaderNotFound) {
		t.Errorf("error should wrap ErrHeaderNotFound: %v", err)
	}
	if len(res.RowErrors) != 1 || res.RowErrors[0].Row != 4 {
		t.Errorf("unexpected row errors %v", res.RowErrors)
	}

	// the other writes were still saved
	f, _ := excelize.OpenFile(path)
	defer f.Close()
	if got := cell(t, f, 13, 3); got != "MD Price mismatch($59)" {
		t.Errorf("unaffected cell not saved: %q", got)
	}
}

func TestReconcileMissingWorkbook(t *testing.T) {
	w := NewWriter(headers.Build(sheettest.Headers), DefaultOptions())
	_, err := w.Reconcile(context.Background(), snapshot(), filepath.Join(t.TempDir(), "missing.xlsx"), testSheet)
	if !errors.Is(err, model.ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestReconcileFallsBackToFirstSheet(t *testing.T) {
	path := fixture(t)
	w := NewWriter(headers.Build(sheettest.Headers), DefaultOptions())
	if _, err := w.Reconcile(context.Background(), snapshot(), path, "CAN Markdowns"); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	f, _ := excelize.OpenFile(path)
	defer f.Close()
	if got := cell(t, f, 16, 4); got != "Missing Images" {
		t.Errorf("fallback sheet not written: %q", got)
	}
}

func TestClear(t *testing.T) {
	path := fixture(t)
	hm := headers.Build(sheettest.Headers)
	ctx := context.Background()

	if _, err := NewWriter(hm, DefaultOptions()).Reconcile(ctx, snapshot(), path, testSheet); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	cleared, err := Clear(ctx, path, testSheet, hm, DefaultOptions())
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 4 {
		t.Errorf("cleared = %d, expected 4", cleared)
	}

	for k, v := range readNotes(t, path) {
		if v != "" {
			t.Errorf("cell %s still holds %q", k, v)
		}
	}

	f, _ := excelize.OpenFile(path)
	defer f.Close()
	if got := cell(t, f, 3, 3); got != "Align Pant" {
		t.Errorf("non-note data was cleared: %q", got)
	}
	if got := cell(t, f, 13, 2); got != "Price Notes" {
		t.Errorf("header cleared: %q", got)
	}
	style, _ := f.GetStyle(styleOf(t, f, 10, 4))
	if style != nil && style.Fill.Pattern != 0 {
		t.Error("price highlight should be removed")
	}
}

func priceFragments(id int, frags ...string) []model.Finding {
	f := model.NewFinding(id)
	f.SetFragments(model.CategoryPrice, frags)
	return []model.Finding{*f}
}

func TestReconcileAppendsOnlyNewFragments(t *testing.T) {
	path := fixture(t)
	w := NewWriter(headers.Build(sheettest.Headers), DefaultOptions())
	ctx := context.Background()

	passes := []struct {
		name     string
		snapshot []model.Finding
		appended int
	}{
		{"english run", priceFragments(1, "Regular Price Range $59 - $79", "MD Price mismatch($49)"), 1},
		{"french run on a fresh store", priceFragments(1, "Regular Price Range $59 - $79 for CAN-FR", "MD Price mismatch($49) for CAN-FR"), 0},
		{"french run with one new fragment", priceFragments(1,
			"Regular Price Range $59 - $79 for CAN-FR", "MD Price mismatch($49) for CAN-FR", "Regular Price mismatch($98) for CAN-FR"), 1},
		{"same snapshot again", priceFragments(1,
			"Regular Price Range $59 - $79 for CAN-FR", "MD Price mismatch($49) for CAN-FR", "Regular Price mismatch($98) for CAN-FR"), 0},
	}
	for _, p := range passes {
		res, err := w.Reconcile(ctx, p.snapshot, path, testSheet)
		if err != nil {
			t.Fatalf("%s: Reconcile failed: %v", p.name, err)
		}
		if res.CellsAppended != p.appended {
			t.Errorf("%s: CellsAppended = %d, expected %d", p.name, res.CellsAppended, p.appended)
		}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	want := "Regular Price Range $59 - $79\nMD Price mismatch($49)\nRegular Price mismatch($98) for CAN-FR"
	if got := cell(t, f, 13, 3); got != want {
		t.Errorf("price notes = %q, expected %q", got, want)
	}
}

func TestReconcileSkipsSpacerRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.xlsx")
	data := [][]string{
		sheettest.Row(map[int]string{0: "1", 2: "Align Pant", 9: "69"}),
		sheettest.Row(map[int]string{0: "2"}),
		sheettest.Row(map[int]string{0: "3", 2: "Scuba Hoodie", 9: "79"}),
	}
	if err := sheettest.Write(path, testSheet, sheettest.Headers, data); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	res, err := NewWriter(headers.Build(sheettest.Headers), DefaultOptions()).Reconcile(context.Background(), nil, path, testSheet)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Highlighted != 2 {
		t.Errorf("Highlighted = %d, expected 2", res.Highlighted)
	}

	f, _ := excelize.OpenFile(path)
	defer f.Close()
	if styleOf(t, f, 10, 4) != 0 || styleOf(t, f, 3, 4) != 0 {
		t.Error("spacer row should not be formatted")
	}
	if styleOf(t, f, 10, 5) == 0 {
		t.Error("product after the spacer should be highlighted")
	}
}
