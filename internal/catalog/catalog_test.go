package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pdp-recon/internal/model"
)

func TestLoadAndLookup(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir, model.SectionMarkdowns, model.RegionCANEN)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	data := `[
		{"id": 1, "name": "Align™ Pant 25\"", "href": "/p/align/_/prod1"},
		{"id": 2, "name": "Define  Jacket*", "href": "/p/define/_/prod2"},
		{"id": 3, "name": "Define Jacket", "href": "/p/define/_/prod3"}
	]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir, model.SectionMarkdowns, model.RegionCANEN)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, expected 3", c.Len())
	}

	tests := []struct {
		name string
		href string
	}{
		{"Align™ Pant 25", "/p/align/_/prod1"},
		{"Define Jacket", "/p/define/_/prod2"},
		{"Scuba Hoodie", ""},
	}
	for _, tt := range tests {
		p := c.Lookup(tt.name)
		got := ""
		if p != nil {
			got = p.Href
		}
		if got != tt.href {
			t.Errorf("Lookup(%q) = %q, expected %q", tt.name, got, tt.href)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir(), model.SectionNewness, model.RegionUSA)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	var c *Catalog
	if c.Lookup("x") != nil || c.Len() != 0 {
		t.Error("nil catalog should behave as empty")
	}
}
