package observe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pdp-recon/internal/checks"
	"pdp-recon/internal/model"
)

const yamlDoc = `
pages:
  - link: /p/align-pant/_/prod1
    pids: [LW5CT3S]
    color_titles: ["New Black", "Bone"]
    product_name: Align Pant 25
    regular_price: "$59 - $98"
    selected_regular_price: "$98 USD"
    markdown_price: "$69 USD"
    sizes: [XS, S, M]
    active_size: true
    final_sale: true
    images: 4
    hidden: [breadcrumb]
`

func TestLoadYAMLAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observations.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0644); err != nil {
		t.Fatal(err)
	}
	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ctx := context.Background()

	page, err := set.Open(ctx, "https://shop.example.com/p/align-pant/_/prod1?color=0001")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	title, err := page.ColorTitle(ctx, "Black")
	if err != nil || title != "New Black" {
		t.Errorf("ColorTitle = %q, %v", title, err)
	}
	if _, err := page.ColorTitle(ctx, "Red"); !errors.Is(err, model.ErrNotOnPage) {
		t.Errorf("absent colour should be ErrNotOnPage, got %v", err)
	}

	before, _ := page.PriceText(ctx, checks.PriceRegular)
	if err := page.SelectFirstSize(ctx); err != nil {
		t.Fatal(err)
	}
	after, _ := page.PriceText(ctx, checks.PriceRegular)
	if before != "$59 - $98" || after != "$98 USD" {
		t.Errorf("regular price before/after selection = %q/%q", before, after)
	}

	if visible, _ := page.IsVisible(ctx, checks.ElementBreadcrumb); visible {
		t.Error("breadcrumb should be hidden")
	}
	if visible, _ := page.IsVisible(ctx, checks.ElementAddToBag); !visible {
		t.Error("add to bag should be visible")
	}
}

func TestSearchAndMissingLinks(t *testing.T) {
	set := NewSet([]Snapshot{{Link: "/p/define/_/prod2", PIDs: []string{"LW4BXXS"}}})
	ctx := context.Background()

	if _, found, err := set.Search(ctx, "LW4BXXS"); !found || err != nil {
		t.Errorf("Search should find the pid, got %v, %v", found, err)
	}
	if _, found, _ := set.Search(ctx, "NOPE"); found {
		t.Error("unknown pid should not be found")
	}
	if _, err := set.Open(ctx, "/p/unknown"); err == nil {
		t.Error("Open of an uncaptured link should fail")
	}

	page, _ := set.Open(ctx, "/p/define/_/prod2/")
	if _, err := page.ProductName(ctx); !errors.Is(err, model.ErrNotOnPage) {
		t.Errorf("missing name should be ErrNotOnPage, got %v", err)
	}
	if err := page.SelectFirstSize(ctx); !errors.Is(err, model.ErrNotOnPage) {
		t.Errorf("no sizes should be ErrNotOnPage, got %v", err)
	}
}
