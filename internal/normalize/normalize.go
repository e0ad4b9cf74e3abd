// Package normalize turns semi-structured storefront and spreadsheet text
// into canonical forms that can be compared directly.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"pdp-recon/internal/model"
)

var sizeAliases = map[string]string{
	"2XL":      "XXL",
	"XXL":      "XXL",
	"3XL":      "XXXL",
	"XXXL":     "XXXL",
	"4XL":      "XXXXL",
	"XXXXL":    "XXXXL",
	"5XL":      "XXXXXL",
	"XXXXXL":   "XXXXXL",
	"O/S":      "ONE SIZE",
	"OS":       "ONE SIZE",
	"ONE SIZE": "ONE SIZE",
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	frenchPrice   = regexp.MustCompile(`\$?\s*(\d+[.,]?\d*)`)
	priceRange    = regexp.MustCompile(`\$?\d+.*?-\s*\$?\d+`)
	nameNoise     = strings.NewReplacer("/", "", `"`, "", "*", "")
)

// Size canonicalizes a size token
func Size(raw string) string {
	upper := cases.Upper(language.Und).String(strings.TrimSpace(raw))
	if alias, ok := sizeAliases[upper]; ok {
		return alias
	}
	return upper
}

// Sizes splits a comma-separated size run and canonicalizes every token.
// Empty tokens are dropped.
func Sizes(run string) []string {
	if strings.TrimSpace(run) == "" {
		return nil
	}
	parts := strings.Split(run, ",")
	sizes := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := Size(p); s != "" {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

// Collapse replaces non-breaking spaces and whitespace runs with a single
// ASCII space and trims the result.
func Collapse(raw string) string {
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
}

// Price extracts the canonical price of a storefront price label.
//
// French-Canadian labels read "49,50 $": the integer part is kept and
// re-prefixed with "$". Everywhere else the first token is the price.
func Price(raw string, region model.Region) (string, bool) {
	cleaned := Collapse(raw)
	if cleaned == "" {
		return "", false
	}

	if region.FrenchPricing() {
		m := frenchPrice.FindStringSubmatch(cleaned)
		if m == nil {
			return "", false
		}
		return "$" + strings.Split(m[1], ",")[0], true
	}

	return strings.Split(cleaned, " ")[0], true
}

// PriceRange extracts "$59 - $79" style ranges. A range is informational:
// it is recorded as a note and never compared against expected prices.
func PriceRange(raw string) (string, bool) {
	cleaned := Collapse(raw)
	if !strings.Contains(cleaned, "-") {
		return "", false
	}
	m := priceRange.FindString(cleaned)
	return m, m != ""
}

// ExpectedPrice formats a spreadsheet price the way the storefront shows it
func ExpectedPrice(raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" || strings.HasPrefix(p, "$") {
		return p
	}
	return "$" + p
}

// Name makes product names comparable across the sheet and the page
func Name(raw string) string {
	return norm.NFC.String(Collapse(nameNoise.Replace(raw)))
}

// Color strips the decorations the storefront adds to a colour title
func Color(raw string) string {
	c := Collapse(raw)
	c = strings.TrimPrefix(c, "New ")
	c = strings.ReplaceAll(c, "(not available)", "")
	return strings.TrimSpace(c)
}
