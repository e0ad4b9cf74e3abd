package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdp-recon/internal/sheet/sheettest"
)

// writeProject lays out a workbook, observations and a config file the way
// an operator would, and points the CLI flags at them
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	workbook := filepath.Join(dir, "products.xlsx")
	err := sheettest.Write(workbook, "USA Newness", sheettest.Headers, [][]string{
		sheettest.Row(map[int]string{2: "Swiftly Tech Tee", 4: "White", 5: "S, M", 7: "R1", 8: "68", 11: "Images Delivered"}),
	})
	if err != nil {
		t.Fatal(err)
	}

	observations := `pages:
  - link: /p/swiftly
    pids: [R1]
    color_titles: [White]
    product_name: Swiftly Tech Tee
    regular_price: $68 USD
    sizes: [S, M]
    unavailable_sizes: [M]
    active_size: true
    images: 0
`
	obsPath := filepath.Join(dir, "observations.yaml")
	if err := os.WriteFile(obsPath, []byte(observations), 0644); err != nil {
		t.Fatal(err)
	}

	config := strings.NewReplacer("$DIR", filepath.ToSlash(dir)).Replace(`
run:
  section: NEWNESS
  region: USA
workbook:
  path: $DIR/products.xlsx
artifacts:
  dir: $DIR/artifacts
catalog:
  dir: $DIR/catalog
store:
  driver: sqlite
  path: $DIR/artifacts/findings.db
checks:
  observations: $DIR/observations.yaml
  rate_per_second: 0
output:
  dir: $DIR/output
  formats: [json, html]
`)
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestRunModes(t *testing.T) {
	configPath = writeProject(t)
	dir := filepath.Dir(configPath)
	defer func() { mode = modeRun }()

	tests := []struct {
		mode     string
		exitCode int
	}{
		{modeSetup, 0},
		{modeRun, 0},
		{modeReport, 0},
		{"bogus", 1},
	}
	for _, tt := range tests {
		mode = tt.mode
		if got := run(); got != tt.exitCode {
			t.Errorf("run() in mode %q = %d, expected %d", tt.mode, got, tt.exitCode)
		}
	}

	for _, name := range []string{"pdp-recon-report.json", "pdp-recon-report.html", "pdp_recon.log"} {
		if _, err := os.Stat(filepath.Join(dir, "output", name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "artifacts", "NEWNESS", "header-index-map-usa.json")); err != nil {
		t.Errorf("header map not generated: %v", err)
	}
}

func TestInvalidConfigExitCode(t *testing.T) {
	configPath = writeProject(t)
	t.Setenv("SECTION", "CLEARANCE")
	mode = modeSetup
	defer func() { mode = modeRun }()

	if got := run(); got != 2 {
		t.Errorf("run() with an unknown section = %d, expected 2", got)
	}
}
