package normalize

import (
	"reflect"
	"testing"

	"pdp-recon/internal/model"
)

func TestSize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2xl", "XXL"},
		{"XXL", "XXL"},
		{" xxl ", "XXL"},
		{"3XL", "XXXL"},
		{"5xl", "XXXXXL"},
		{"o/s", "ONE SIZE"},
		{"OS", "ONE SIZE"},
		{"one size", "ONE SIZE"},
		{"m", "M"},
		{"10", "10"},
	}
	for _, tt := range tests {
		if got := Size(tt.in); got != tt.want {
			t.Errorf("Size(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestSizes(t *testing.T) {
	got := Sizes("XS, s,M,,2xl ")
	want := []string{"XS", "S", "M", "XXL"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sizes = %v, expected %v", got, want)
	}
	if Sizes("  ") != nil {
		t.Error("blank size run should yield nil")
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		raw    string
		region model.Region
		want   string
		ok     bool
	}{
		{"$49.50 USD", model.RegionUSA, "$49.50", true},
		{"  $49.50 CAD ", model.RegionCANEN, "$49.50", true},
		{"49,50 $ CAD", model.RegionCANFR, "$49", true},
		{"49 $", model.RegionCANFR, "$49", true},
		{"$128", model.RegionCANFR, "$128", true},
		{"Prix indisponible", model.RegionCANFR, "", false},
		{"", model.RegionUSA, "", false},
	}
	for _, tt := range tests {
		got, ok := Price(tt.raw, tt.region)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Price(%q, %s) = %q, %v, expected %q, %v", tt.raw, tt.region, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPriceRange(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"$59 - $79", "$59 - $79", true},
		{"$59 - $79 USD", "$59 - $79", true},
		{"$59 USD", "", false},
		{"$59\u00a0-\u00a0$79", "$59 - $79", true},
		{"sale - see store", "", false},
	}
	for _, tt := range tests {
		got, ok := PriceRange(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PriceRange(%q) = %q, %v, expected %q, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNameAndColor(t *testing.T) {
	if got := Name(` Align™  High-Rise  Pant 25"* `); got != "Align™ High-Rise Pant 25" {
		t.Errorf("Name = %q", got)
	}
	// decomposed é composes under NFC
	if Name("Pull Cafe\u0301") != Name("Pull Caf\u00e9") {
		t.Error("Name should compare NFC-equivalent strings as equal")
	}

	tests := []struct {
		in, want string
	}{
		{"New Black", "Black"},
		{"Heathered Grey (not available)", "Heathered Grey"},
		{"  Bone ", "Bone"},
	}
	for _, tt := range tests {
		if got := Color(tt.in); got != tt.want {
			t.Errorf("Color(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestExpectedPrice(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"49", "$49"},
		{"$49", "$49"},
		{" 12.50 ", "$12.50"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpectedPrice(tt.in); got != tt.want {
			t.Errorf("ExpectedPrice(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}
