package report

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"pdp-recon/internal/config"
	"pdp-recon/internal/model"
)

func sampleSummary() *model.Summary {
	findings := []model.Finding{
		{ProductID: 3, PriceNotes: " MD Price mismatch($39)", PricingCorrect: false},
		{ProductID: 1, PricingCorrect: true},
		{ProductID: 2, SizeNotes: " Extra sizes [XL]", PhotoNotes: " Missing Images", PricingCorrect: true},
	}
	return model.NewSummary("2026-10-19", model.SectionMarkdowns, model.RegionUSA, findings)
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Output: config.OutputConfig{
			Dir:      t.TempDir(),
			FileName: "findings",
		},
	}
}

func TestNewSummary(t *testing.T) {
	s := sampleSummary()

	if s.TotalProducts != 3 || s.ProductsWithNotes != 2 {
		t.Errorf("totals = %d/%d, expected 3/2", s.TotalProducts, s.ProductsWithNotes)
	}
	if len(s.IncorrectPricing) != 1 || s.IncorrectPricing[0] != 3 {
		t.Errorf("IncorrectPricing = %v, expected [3]", s.IncorrectPricing)
	}
	if s.Findings[0].ProductID != 1 || s.Findings[2].ProductID != 3 {
		t.Error("findings should be ordered by product id")
	}

	counts := map[model.Category]int{}
	for _, c := range s.CategoryCounts {
		counts[c.Category] = c.Count
	}
	if counts[model.CategoryPrice] != 1 || counts[model.CategorySize] != 1 || counts[model.CategoryOther] != 0 {
		t.Errorf("unexpected category counts %v", counts)
	}
	if len(s.CategoryCounts) != len(model.Categories) {
		t.Errorf("expected a count for every category, got %d", len(s.CategoryCounts))
	}
}

func TestGetExporters(t *testing.T) {
	tests := []struct {
		formats  []string
		expected int
	}{
		{[]string{"excel", "html", "word", "json", "yaml"}, 5},
		{[]string{"xlsx", "excel", " EXCEL "}, 1},
		{[]string{"docx", "word", "yml", "yaml"}, 2},
		{[]string{"pdf", ""}, 0},
	}
	for _, tt := range tests {
		if got := len(GetExporters(tt.formats)); got != tt.expected {
			t.Errorf("GetExporters(%v) returned %d exporters, expected %d", tt.formats, got, tt.expected)
		}
	}
}

func TestExcelExport(t *testing.T) {
	cfg := testConfig(t)
	if err := NewExcelExporter().Export(sampleSummary(), cfg); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := excelize.OpenFile(cfg.GetOutputPath("xlsx"))
	if err != nil {
		t.Fatalf("Failed to open report: %v", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		t.Error("default Sheet1 should be removed")
	}

	checked, _ := f.GetCellValue(OverviewSheet, "B5")
	if checked != "3" {
		t.Errorf("Products Checked = %q, expected 3", checked)
	}

	rows, err := f.GetRows(FindingsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][2] != model.HeaderPriceNotes {
		t.Errorf("first note column = %q", rows[0][2])
	}
	if rows[3][0] != "3" || rows[3][1] != "No" || rows[3][2] != "MD Price mismatch($39)" {
		t.Errorf("unexpected product 3 row %v", rows[3])
	}
}

func TestDataExports(t *testing.T) {
	cfg := testConfig(t)
	summary := sampleSummary()

	if err := NewJSONExporter().Export(summary, cfg); err != nil {
		t.Fatalf("JSON export failed: %v", err)
	}
	if err := NewYAMLExporter().Export(summary, cfg); err != nil {
		t.Fatalf("YAML export failed: %v", err)
	}

	var fromJSON model.Summary
	data, _ := os.ReadFile(cfg.GetOutputPath("json"))
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	if fromJSON.TotalProducts != 3 || len(fromJSON.Findings) != 3 {
		t.Errorf("JSON report lost data: %+v", fromJSON)
	}

	var fromYAML model.Summary
	data, _ = os.ReadFile(cfg.GetOutputPath("yaml"))
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatalf("invalid YAML report: %v", err)
	}
	if len(fromYAML.IncorrectPricing) != 1 || fromYAML.Findings[1].PhotoNotes != " Missing Images" {
		t.Errorf("YAML report lost data: %+v", fromYAML)
	}
}

func TestHTMLAndWordExports(t *testing.T) {
	cfg := testConfig(t)
	for _, exp := range GetExporters([]string{"html", "word"}) {
		if err := exp.Export(sampleSummary(), cfg); err != nil {
			t.Fatalf("%T failed: %v", exp, err)
		}
	}

	page, err := os.ReadFile(cfg.GetOutputPath("html"))
	if err != nil {
		t.Fatal(err)
	}
	html := string(page)
	if !strings.Contains(html, "Extra sizes [XL]") || !strings.Contains(html, "Incorrect") {
		t.Error("HTML report is missing findings")
	}
	if strings.Contains(html, "<td>1</td>") {
		t.Error("products without findings should not be listed")
	}

	zr, err := zip.OpenReader(cfg.GetOutputPath("docx"))
	if err != nil {
		t.Fatalf("Word report is not a valid docx: %v", err)
	}
	defer zr.Close()

	var body string
	for _, zf := range zr.File {
		if zf.Name != "word/document.xml" {
			continue
		}
		rc, _ := zf.Open()
		b, _ := io.ReadAll(rc)
		rc.Close()
		body = string(b)
	}
	if !strings.Contains(body, "[Product 2]") || !strings.Contains(body, "MARKDOWNS USA") {
		t.Error("Word report is missing content")
	}
	if strings.Contains(body, "{{") {
		t.Error("Word report has unreplaced placeholders")
	}
}
