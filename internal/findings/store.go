// Package findings aggregates validation findings per product row.
//
// Every backend honours the same contract: mutations of one product are
// serialized, mutations of different products may run in parallel, and an
// append never removes or reorders what is already stored.
package findings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pdp-recon/internal/model"
)

// Store is the single writable owner of findings during a run
type Store interface {
	// UpsertAppend records message under category for the product. An
	// empty message creates the finding without touching any note.
	UpsertAppend(ctx context.Context, productID int, category model.Category, message string) error

	// SetPricingCorrect overwrites the pricing flag (last write wins)
	SetPricingCorrect(ctx context.Context, productID int, correct bool) error

	// ReadAll returns a snapshot of every finding ordered by product id
	ReadAll(ctx context.Context) ([]model.Finding, error)

	// Reset drops every finding before the next crawl cycle
	Reset(ctx context.Context) error

	Close() error
}

// Supported backend drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Open creates a store for the configured driver
func Open(driver, path string, busyTimeout time.Duration) (Store, error) {
	switch strings.ToLower(driver) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, "":
		return OpenSQLite(path, busyTimeout)
	default:
		return nil, fmt.Errorf("%w: unsupported store driver %q", model.ErrConfiguration, driver)
	}
}

// Get returns the finding for one product, or nil if nothing was recorded
func Get(ctx context.Context, s Store, productID int) (*model.Finding, error) {
	all, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ProductID == productID {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Index keys a snapshot by product id
func Index(findings []model.Finding) map[int]*model.Finding {
	idx := make(map[int]*model.Finding, len(findings))
	for i := range findings {
		idx[findings[i].ProductID] = &findings[i]
	}
	return idx
}

func validateID(productID int) error {
	if productID <= 0 {
		return fmt.Errorf("invalid product id %d", productID)
	}
	return nil
}

func validate(productID int, category model.Category) error {
	if err := validateID(productID); err != nil {
		return err
	}
	if !category.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownCategory, category)
	}
	return nil
}
