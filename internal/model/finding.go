package model

import "strings"

// Finding is the accumulated validation result for one spreadsheet row.
// Note fields hold space-joined fragments, each prefixed by a space, exactly
// as the findings store renders them.
type Finding struct {
	ProductID int `json:"product_id" yaml:"product_id"`

	SizeNotes       string `json:"size_notes,omitempty" yaml:"size_notes,omitempty"`
	PriceNotes      string `json:"price_notes,omitempty" yaml:"price_notes,omitempty"`
	CatalogOpsNotes string `json:"catalog_ops_notes,omitempty" yaml:"catalog_ops_notes,omitempty"`
	PhotoNotes      string `json:"photo_notes,omitempty" yaml:"photo_notes,omitempty"`
	ContentNotes    string `json:"content_notes,omitempty" yaml:"content_notes,omitempty"`
	OtherNotes      string `json:"other_notes,omitempty" yaml:"other_notes,omitempty"`

	// PricingCorrect defaults to true: nothing observed means assumed correct
	PricingCorrect bool `json:"pricing_correct" yaml:"pricing_correct"`

	// fragments keeps the individual messages behind each rendered note
	fragments map[Category][]string
}

// NewFinding returns an empty finding with the default flag
func NewFinding(productID int) *Finding {
	return &Finding{ProductID: productID, PricingCorrect: true}
}

// Note returns the rendered note text for a category
func (f *Finding) Note(c Category) string {
	switch c {
	case CategorySize:
		return f.SizeNotes
	case CategoryPrice:
		return f.PriceNotes
	case CategoryCatalogOps:
		return f.CatalogOpsNotes
	case CategoryPhoto:
		return f.PhotoNotes
	case CategoryContent:
		return f.ContentNotes
	case CategoryOther:
		return f.OtherNotes
	}
	return ""
}

// SetNote replaces the rendered note text for a category
func (f *Finding) SetNote(c Category, text string) {
	switch c {
	case CategorySize:
		f.SizeNotes = text
	case CategoryPrice:
		f.PriceNotes = text
	case CategoryCatalogOps:
		f.CatalogOpsNotes = text
	case CategoryPhoto:
		f.PhotoNotes = text
	case CategoryContent:
		f.ContentNotes = text
	case CategoryOther:
		f.OtherNotes = text
	}
}

// SetFragments replaces a category's messages and renders its note the way
// the store exposes it: every fragment carries a leading space.
func (f *Finding) SetFragments(c Category, fragments []string) {
	if f.fragments == nil {
		f.fragments = make(map[Category][]string, len(Categories))
	}
	f.fragments[c] = append([]string(nil), fragments...)

	var sb strings.Builder
	for _, frag := range fragments {
		sb.WriteByte(' ')
		sb.WriteString(frag)
	}
	f.SetNote(c, sb.String())
}

// Fragments returns the individual messages of a category. A finding whose
// note was set as plain text yields that text as a single fragment.
func (f *Finding) Fragments(c Category) []string {
	if frags, ok := f.fragments[c]; ok {
		return frags
	}
	if note := strings.TrimSpace(f.Note(c)); note != "" {
		return []string{note}
	}
	return nil
}

// HasNotes reports whether any category carries text
func (f *Finding) HasNotes() bool {
	for _, c := range Categories {
		if f.Note(c) != "" {
			return true
		}
	}
	return false
}

// Product is one crawler record from a category listing page
type Product struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Href string `json:"href"`
}

// ExpectedRow carries the authoritative attributes of one data row
type ExpectedRow struct {
	ProductID int // spreadsheet row number minus header rows
	RowNumber int // 1-based spreadsheet row

	Name     string
	FRName   string
	Colour   string
	SizeRun  string
	MDPID    string
	RegPID   string
	RegPrice string
	MDPrice  string
	Images   string
	Notes    string
}

// DisplayName returns the name the region's storefront shows
func (r ExpectedRow) DisplayName(region Region) string {
	if region == RegionCANFR && r.FRName != "" {
		return r.FRName
	}
	return r.Name
}

// PID returns the product identifier searched for in the section
func (r ExpectedRow) PID(section Section) string {
	if section == SectionNewness && r.RegPID != "" {
		return r.RegPID
	}
	return r.MDPID
}
