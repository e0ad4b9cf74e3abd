package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pdp-recon/internal/logger"
	"pdp-recon/internal/model"
	"pdp-recon/internal/normalize"
)

// Finding messages
const (
	msgNotOnCDP          = "Not showing on CDP"
	msgNotOnWeb          = "Not showing on web"
	msgNotOnPDP          = "Not showing on PDP"
	msgModelInfoMissing  = "Model Information is not visible on PDP"
	msgBreadcrumbMissing = "BreadCrumb is not visible on PDP"
	msgAddToBagMissing   = "Add to Bag Section is not visible on PDP"
	msgWWMTMissing       = "Why We Made This section is not visible on PDP"
	msgNameMissing       = "Ecomm Name is not visible on PDP"
	msgFinalSaleMissing  = "Final Sale badge not shown on PDP"
	msgAllSizesOOS       = "All sizes OOS."
	msgPendingImages     = "Pending Images"
	msgMissingImages     = "Missing Images"

	imagesDelivered = "Images Delivered"
)

// placeholders an expected markdown price may carry when no markdown is planned
var mdPlaceholders = []string{"N/A", "-"}

// Validator runs every check of one section and region
type Validator struct {
	section model.Section
	region  model.Region
	nav     Navigator
	sink    Sink
}

// NewValidator creates a validator writing findings to sink
func NewValidator(section model.Section, region model.Region, nav Navigator, sink Sink) *Validator {
	return &Validator{section: section, region: region, nav: nav, sink: sink}
}

// run carries the state of one product check
type run struct {
	*Validator
	row  model.ExpectedRow
	page Page
	errs []error
}

// Validate checks one expected row. product is the crawler catalog entry,
// nil when the product was not listed. Discrepancies become findings; the
// returned error is reserved for collaborator and store failures.
func (v *Validator) Validate(ctx context.Context, row model.ExpectedRow, product *model.Product) error {
	r := &run{Validator: v, row: row}

	found, err := r.locate(ctx, product)
	if err != nil || !found {
		return err
	}

	r.presence(ctx)
	if !r.color(ctx) {
		return errors.Join(r.errs...)
	}
	r.name(ctx)
	if v.section == model.SectionMarkdowns {
		r.finalSale(ctx)
	}
	r.prices(ctx)
	if v.region.ChecksSizes() {
		r.sizes(ctx)
	}
	r.images(ctx)

	return errors.Join(r.errs...)
}

// note records a message (suffixed for the region) and keeps store errors
func (r *run) note(ctx context.Context, c model.Category, message string) {
	message = r.region.Suffix(message)
	if err := r.sink.UpsertAppend(ctx, r.row.ProductID, c, message); err != nil {
		r.errs = append(r.errs, fmt.Errorf("product %d: %w", r.row.ProductID, err))
		return
	}
	if message != "" {
		logger.LogFinding(r.row.ProductID, string(c), message)
	}
}

func (r *run) disputePricing(ctx context.Context) {
	if err := r.sink.SetPricingCorrect(ctx, r.row.ProductID, false); err != nil {
		r.errs = append(r.errs, fmt.Errorf("product %d: %w", r.row.ProductID, err))
	}
}

// collaborator records a page failure that is not a plain absence
func (r *run) collaborator(what string, err error) bool {
	if err == nil || errors.Is(err, model.ErrNotOnPage) {
		return false
	}
	logger.Warn("Product %d: failed to read %s: %v", r.row.ProductID, what, err)
	r.errs = append(r.errs, fmt.Errorf("product %d: %s: %w", r.row.ProductID, what, err))
	return true
}

func (r *run) locate(ctx context.Context, product *model.Product) (bool, error) {
	if product != nil {
		page, err := r.nav.Open(ctx, product.Href)
		if err != nil {
			return false, fmt.Errorf("product %d: failed to open %s: %w", r.row.ProductID, product.Href, err)
		}
		r.page = page
		return true, nil
	}

	pid := r.row.PID(r.section)
	page, found, err := r.nav.Search(ctx, pid)
	if err != nil {
		return false, fmt.Errorf("product %d: search for %s failed: %w", r.row.ProductID, pid, err)
	}
	if !found {
		logger.Debug("Product %d: %s not found in search results", r.row.ProductID, pid)
		r.note(ctx, model.CategoryCatalogOps, msgNotOnWeb)
		r.disputePricing(ctx)
		return false, errors.Join(r.errs...)
	}

	r.note(ctx, model.CategoryCatalogOps, msgNotOnCDP)
	r.page = page
	return true, nil
}

func (r *run) presence(ctx context.Context) {
	checks := []struct {
		el       Element
		category model.Category
		message  string
	}{
		{ElementModelInfo, model.CategoryPhoto, msgModelInfoMissing},
		{ElementBreadcrumb, model.CategoryOther, msgBreadcrumbMissing},
		{ElementAddToBag, model.CategoryOther, msgAddToBagMissing},
		{ElementWhyWeMadeThis, model.CategoryContent, msgWWMTMissing},
	}
	for _, c := range checks {
		visible, err := r.page.IsVisible(ctx, c.el)
		if r.collaborator(string(c.el), err) {
			continue
		}
		if !visible {
			r.note(ctx, c.category, c.message)
		}
	}
}

// color gates every later check: without the expected colour the page
// shows some other product variant.
func (r *run) color(ctx context.Context) bool {
	title, err := r.page.ColorTitle(ctx, r.row.Colour)
	if r.collaborator("colour", err) {
		return false
	}

	if CompareColor(r.row.Colour, title).Status != Matched {
		r.note(ctx, model.CategoryCatalogOps, msgNotOnPDP)
		r.disputePricing(ctx)
		return false
	}
	return true
}

func (r *run) name(ctx context.Context) {
	observed, err := r.page.ProductName(ctx)
	if r.collaborator("product name", err) {
		return
	}

	out := CompareName(r.row.DisplayName(r.region), observed)
	switch out.Status {
	case NotFound:
		r.note(ctx, model.CategoryOther, msgNameMissing)
	case Mismatched:
		r.note(ctx, model.CategoryOther, fmt.Sprintf("Ecomm Name mismatch(%s)", out.Observed))
	}
}

func (r *run) finalSale(ctx context.Context) {
	badge, err := r.page.IsFinalSale(ctx)
	if r.collaborator("final sale badge", err) {
		return
	}
	if !badge {
		r.note(ctx, model.CategoryOther, msgFinalSaleMissing)
	}
}

func (r *run) prices(ctx context.Context) {
	regularRaw, err := r.page.PriceText(ctx, PriceRegular)
	if r.collaborator("regular price", err) {
		return
	}
	regularIsRange := false
	if rng, ok := normalize.PriceRange(regularRaw); ok {
		regularIsRange = true
		r.note(ctx, model.CategoryPrice, "Regular Price Range "+rng)
	}

	if err := r.page.SelectFirstSize(ctx); r.collaborator("size selection", err) {
		return
	}

	if r.section == model.SectionMarkdowns {
		r.markdownPrice(ctx)
	}

	// prices shown after selecting a size replace the range
	if raw, err := r.page.PriceText(ctx, PriceRegular); err == nil {
		regularRaw = raw
		_, regularIsRange = normalize.PriceRange(raw)
	}
	if regularIsRange {
		return
	}

	out := ComparePrice(r.row.RegPrice, regularRaw, r.region)
	if out.Status == Matched {
		r.note(ctx, model.CategoryPrice, "")
		return
	}
	r.note(ctx, model.CategoryPrice, fmt.Sprintf("Regular Price mismatch(%s)", shown(out)))
}

func (r *run) markdownPrice(ctx context.Context) {
	raw, err := r.page.PriceText(ctx, PriceMarkdown)
	if r.collaborator("markdown price", err) {
		return
	}
	if _, isRange := normalize.PriceRange(raw); isRange {
		return
	}

	out := ComparePrice(r.row.MDPrice, raw, r.region)
	if out.Status == Matched {
		r.note(ctx, model.CategoryPrice, "")
		return
	}

	message := fmt.Sprintf("MD Price mismatch(%s)", shown(out))
	for _, p := range mdPlaceholders {
		if strings.Contains(r.row.MDPrice, p) {
			message = fmt.Sprintf("Price available on PDP: %s", shown(out))
			break
		}
	}
	r.note(ctx, model.CategoryPrice, message)
	r.disputePricing(ctx)
}

func (r *run) sizes(ctx context.Context) {
	labels, err := r.page.SizeLabels(ctx)
	if r.collaborator("sizes", err) {
		return
	}

	extra, missing := CompareSizes(r.row.SizeRun, labels)
	if len(extra) > 0 {
		r.note(ctx, model.CategorySize, fmt.Sprintf("Extra sizes [%s]", strings.Join(extra, ",")))
	}
	if len(missing) > 0 {
		r.note(ctx, model.CategorySize, fmt.Sprintf("Missing sizes [%s]", strings.Join(missing, ",")))
	}

	unavailable, err := r.page.UnavailableSizeLabels(ctx)
	if r.collaborator("unavailable sizes", err) {
		return
	}
	if r.section == model.SectionNewness && len(unavailable) > 0 {
		r.note(ctx, model.CategorySize, fmt.Sprintf("Size OOS(%s)", strings.Join(unavailable, ",")))
		return
	}

	active, err := r.page.HasActiveSize(ctx)
	if r.collaborator("active size", err) {
		return
	}
	if !active {
		r.note(ctx, model.CategorySize, msgAllSizesOOS)
	}
}

func (r *run) images(ctx context.Context) {
	count, err := r.page.ImageCount(ctx)
	if r.collaborator("images", err) {
		return
	}
	if count > 0 {
		return
	}

	message := msgMissingImages
	if r.section == model.SectionNewness && r.row.Images != imagesDelivered {
		message = msgPendingImages
	}
	r.note(ctx, model.CategoryPhoto, message)
}

// shown renders an observed price for a note; absent labels read "N/A"
func shown(out Outcome) string {
	if out.Status == NotFound {
		return "N/A"
	}
	return out.Observed
}
