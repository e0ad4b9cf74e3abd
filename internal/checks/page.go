// Package checks validates one live product page against its expected
// spreadsheet row and files every discrepancy as a finding.
package checks

import (
	"context"

	"pdp-recon/internal/model"
)

// Element is a page section whose visibility is checked
type Element string

const (
	ElementModelInfo     Element = "model-information"
	ElementBreadcrumb    Element = "breadcrumb"
	ElementAddToBag      Element = "add-to-bag"
	ElementWhyWeMadeThis Element = "why-we-made-this"
)

// PriceKind selects which price label to read
type PriceKind string

const (
	PriceRegular  PriceKind = "regular"
	PriceMarkdown PriceKind = "markdown"
)

// Page is the live state of an opened product page, as extracted by the
// browser layer. Methods return model.ErrNotOnPage when the element is
// absent; any other error is a collaborator failure.
type Page interface {
	// ColorTitle returns the title of the swatch matching expected
	ColorTitle(ctx context.Context, expected string) (string, error)
	ProductName(ctx context.Context) (string, error)
	PriceText(ctx context.Context, kind PriceKind) (string, error)
	SelectFirstSize(ctx context.Context) error
	SizeLabels(ctx context.Context) ([]string, error)
	UnavailableSizeLabels(ctx context.Context) ([]string, error)
	HasActiveSize(ctx context.Context) (bool, error)
	IsFinalSale(ctx context.Context) (bool, error)
	ImageCount(ctx context.Context) (int, error)
	IsVisible(ctx context.Context, el Element) (bool, error)
}

// Navigator opens product pages
type Navigator interface {
	// Open navigates to a product link from the crawler catalog
	Open(ctx context.Context, link string) (Page, error)
	// Search looks a product up by PID; found is false when no result matched
	Search(ctx context.Context, pid string) (page Page, found bool, err error)
}

// Sink receives findings. findings.Store satisfies it.
type Sink interface {
	UpsertAppend(ctx context.Context, productID int, category model.Category, message string) error
	SetPricingCorrect(ctx context.Context, productID int, correct bool) error
}
