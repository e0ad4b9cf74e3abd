// Package runner fans product checks out over a bounded worker pool
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"pdp-recon/internal/catalog"
	"pdp-recon/internal/logger"
	"pdp-recon/internal/model"
)

// Validator checks one expected row. checks.Validator satisfies it.
type Validator interface {
	Validate(ctx context.Context, row model.ExpectedRow, product *model.Product) error
}

// Progress is advanced once per row. ui.ProgressBar satisfies it.
type Progress interface {
	Increment() error
}

// Options bound the pool
type Options struct {
	Workers       int
	RatePerSecond float64 // page navigations per second, 0 for unlimited
	Burst         int
	Timeout       time.Duration // per product check
}

// Summary reports what a run did
type Summary struct {
	Checked int
	Failed  int
	Skipped int
	Errors  []error
}

// Runner executes checks for every expected row
type Runner struct {
	validator Validator
	catalog   *catalog.Catalog
	region    model.Region
	limiter   *rate.Limiter
	opts      Options
}

// New creates a runner. A nil catalog sends every product through search.
func New(v Validator, cat *catalog.Catalog, region model.Region, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &Runner{
		validator: v,
		catalog:   cat,
		region:    region,
		limiter:   rate.NewLimiter(limit, opts.Burst),
		opts:      opts,
	}
}

// Run checks rows concurrently. A failed check is logged and counted; its
// already committed findings stay in the store. Run returns ctx.Err() when
// cancelled, after in-flight checks finish.
func (r *Runner) Run(ctx context.Context, rows []model.ExpectedRow, progress Progress) (*Summary, error) {
	var (
		mu      sync.Mutex
		summary = &Summary{}
	)
	record := func(row model.ExpectedRow, err error, skipped bool) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case skipped:
			summary.Skipped++
		case err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Errorf("row %d: %w", row.RowNumber, err))
		default:
			summary.Checked++
		}
		if progress != nil {
			progress.Increment()
		}
	}

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)

	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := r.limiter.Wait(ctx); err != nil {
				record(row, nil, true)
				return nil
			}
			err := r.check(ctx, row)
			if err != nil {
				logger.Warn("Check failed for row %d (%s)", row.RowNumber, row.Name)
				logger.LogCheckError(row.RowNumber, row.Name, err)
			}
			record(row, err, false)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("checks interrupted: %w", err)
	}
	return summary, nil
}

func (r *Runner) check(ctx context.Context, row model.ExpectedRow) (err error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("check panicked: %v", p)
		}
	}()

	product := r.catalog.Lookup(row.DisplayName(r.region))
	if product == nil {
		logger.Debug("Row %d not in catalog, falling back to search", row.RowNumber)
	}

	err = r.validator.Validate(ctx, row, product)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timed out after %s: %w", r.opts.Timeout, err)
	}
	return err
}

// Err joins the failures of a run
func (s *Summary) Err() error {
	return errors.Join(s.Errors...)
}
