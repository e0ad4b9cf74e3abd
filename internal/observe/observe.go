// Package observe replays page states captured by the browser layer. A
// snapshot file lists one entry per product page; the set implements
// checks.Navigator so checks can run without a live browser.
package observe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"pdp-recon/internal/checks"
	"pdp-recon/internal/model"
)

// Snapshot is the captured state of one product page
type Snapshot struct {
	Link string   `json:"link" yaml:"link"`
	PIDs []string `json:"pids,omitempty" yaml:"pids,omitempty"`

	ColorTitles  []string `json:"color_titles,omitempty" yaml:"color_titles,omitempty"`
	ProductName  string   `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	RegularPrice string   `json:"regular_price,omitempty" yaml:"regular_price,omitempty"`
	// SelectedRegularPrice is the label shown once a size is selected
	SelectedRegularPrice string `json:"selected_regular_price,omitempty" yaml:"selected_regular_price,omitempty"`
	MarkdownPrice        string `json:"markdown_price,omitempty" yaml:"markdown_price,omitempty"`

	Sizes            []string `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	UnavailableSizes []string `json:"unavailable_sizes,omitempty" yaml:"unavailable_sizes,omitempty"`
	ActiveSize       bool     `json:"active_size" yaml:"active_size"`
	FinalSale        bool     `json:"final_sale" yaml:"final_sale"`
	Images           int      `json:"images" yaml:"images"`

	// Hidden lists page sections that were not visible
	Hidden []checks.Element `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Document is the on-disk format
type Document struct {
	Pages []Snapshot `json:"pages" yaml:"pages"`
}

// Set is a loaded collection of snapshots
type Set struct {
	pages []Snapshot
}

// Load reads a JSON or YAML snapshot document, chosen by extension
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse observations %s: %w", path, err)
	}
	return NewSet(doc.Pages), nil
}

// NewSet wraps in-memory snapshots
func NewSet(pages []Snapshot) *Set {
	return &Set{pages: pages}
}

// Len returns the number of snapshots
func (s *Set) Len() int { return len(s.pages) }

// Open returns the page captured for link. Links match on their path, so
// catalog hrefs and absolute URLs resolve to the same snapshot.
func (s *Set) Open(ctx context.Context, link string) (checks.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := linkPath(link)
	for i := range s.pages {
		if linkPath(s.pages[i].Link) == want {
			return &Page{snap: s.pages[i]}, nil
		}
	}
	return nil, fmt.Errorf("no observation captured for %s", link)
}

// Search returns the page listing pid, if any
func (s *Set) Search(ctx context.Context, pid string) (checks.Page, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	pid = strings.TrimSpace(pid)
	if pid == "" {
		return nil, false, nil
	}
	for i := range s.pages {
		if slices.Contains(s.pages[i].PIDs, pid) {
			return &Page{snap: s.pages[i]}, true, nil
		}
	}
	return nil, false, nil
}

func linkPath(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.Index(link, "://"); i >= 0 {
		link = link[i+3:]
		if j := strings.Index(link, "/"); j >= 0 {
			link = link[j:]
		} else {
			link = "/"
		}
	}
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	return strings.TrimSuffix(link, "/")
}

// Page replays one snapshot. Selecting a size switches the regular price
// to the selected label, as the live page does.
type Page struct {
	snap     Snapshot
	selected bool
}

func (p *Page) ColorTitle(_ context.Context, expected string) (string, error) {
	expected = strings.TrimSpace(expected)
	for _, t := range p.snap.ColorTitles {
		if expected != "" && strings.Contains(t, expected) {
			return t, nil
		}
	}
	return "", model.ErrNotOnPage
}

func (p *Page) ProductName(context.Context) (string, error) {
	if p.snap.ProductName == "" {
		return "", model.ErrNotOnPage
	}
	return p.snap.ProductName, nil
}

func (p *Page) PriceText(_ context.Context, kind checks.PriceKind) (string, error) {
	var text string
	switch kind {
	case checks.PriceMarkdown:
		text = p.snap.MarkdownPrice
	default:
		text = p.snap.RegularPrice
		if p.selected && p.snap.SelectedRegularPrice != "" {
			text = p.snap.SelectedRegularPrice
		}
	}
	if text == "" {
		return "", model.ErrNotOnPage
	}
	return text, nil
}

func (p *Page) SelectFirstSize(context.Context) error {
	if len(p.snap.Sizes) == 0 {
		return model.ErrNotOnPage
	}
	p.selected = true
	return nil
}

func (p *Page) SizeLabels(context.Context) ([]string, error) {
	return p.snap.Sizes, nil
}

func (p *Page) UnavailableSizeLabels(context.Context) ([]string, error) {
	return p.snap.UnavailableSizes, nil
}

func (p *Page) HasActiveSize(context.Context) (bool, error) {
	return p.snap.ActiveSize, nil
}

func (p *Page) IsFinalSale(context.Context) (bool, error) {
	return p.snap.FinalSale, nil
}

func (p *Page) ImageCount(context.Context) (int, error) {
	return p.snap.Images, nil
}

func (p *Page) IsVisible(_ context.Context, el checks.Element) (bool, error) {
	return !slices.Contains(p.snap.Hidden, el), nil
}
