// Package app runs the setup, check, reconcile, reset, report and serve
// phases against one configured section and region.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"pdp-recon/internal/api"
	"pdp-recon/internal/catalog"
	"pdp-recon/internal/checks"
	"pdp-recon/internal/config"
	"pdp-recon/internal/findings"
	"pdp-recon/internal/headers"
	"pdp-recon/internal/logger"
	"pdp-recon/internal/model"
	"pdp-recon/internal/observe"
	"pdp-recon/internal/reconcile"
	"pdp-recon/internal/report"
	"pdp-recon/internal/runner"
	"pdp-recon/internal/sheet"
	"pdp-recon/internal/ui"
)

// App holds the resources shared by every phase of a run
type App struct {
	cfg     *config.Config
	section model.Section
	region  model.Region
	store   findings.Store
	headers *headers.Repository
	barrier *runner.Barrier

	progress io.Writer // nil disables progress bars
	version  string
}

// New validates cfg and opens the findings store
func New(cfg *config.Config, progress io.Writer, version string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	section, _ := cfg.Section()
	region, _ := cfg.Region()

	if cfg.Store.Driver == findings.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	store, err := findings.Open(cfg.Store.Driver, cfg.Store.Path, cfg.Store.BusyTimeout)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		section:  section,
		region:   region,
		store:    store,
		headers:  headers.NewRepository(cfg.Artifacts.Dir, cfg.Artifacts.LockTimeout),
		barrier:  runner.NewBarrier(cfg.Artifacts.Dir, section, region, cfg.ExpectedWorkers(), cfg.Run.WaitTimeout),
		progress: progress,
		version:  version,
	}, nil
}

// Close releases the findings store
func (a *App) Close() error {
	return a.store.Close()
}

// Store returns the findings store
func (a *App) Store() findings.Store {
	return a.store
}

func (a *App) pipeline(phases ...ui.Phase) *ui.Pipeline {
	if a.progress == nil {
		p := ui.NewPipelineWithOutput(phases, io.Discard)
		p.Disable()
		return p
	}
	return ui.NewPipelineWithOutput(phases, a.progress)
}

func (a *App) sheetName() string {
	return a.cfg.SheetName(a.section, a.region.HeaderGroup())
}

// Setup generates the header map for the active section and sheet group.
// Only the designated worker parses the workbook; the others wait for its map.
func (a *App) Setup(ctx context.Context) (headers.Map, error) {
	p := a.pipeline(ui.PhaseSetup)
	defer p.Finish()
	return a.setup(ctx, p)
}

func (a *App) setup(ctx context.Context, p *ui.Pipeline) (headers.Map, error) {
	bar := p.NextPhase(1)
	defer bar.Increment()

	group := a.region.HeaderGroup()
	if !a.cfg.IsDesignatedWorker() {
		logger.Info("Waiting for header map %s/%s from the designated worker...", a.section, group)
		return a.headers.Wait(ctx, a.section, group)
	}

	return a.headers.Ensure(ctx, a.section, group, func() ([]string, error) {
		wb, err := sheet.Open(a.cfg.Workbook.Path)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return wb.HeaderRow(a.sheetName(), a.cfg.Workbook.HeaderRows)
	})
}

// Check validates every expected row against the captured observations and
// records findings in the store
func (a *App) Check(ctx context.Context, observations string) (*runner.Summary, error) {
	p := a.pipeline(ui.PhaseChecking)
	defer p.Finish()

	hm, err := a.headers.Load(a.section, a.region.HeaderGroup())
	if err != nil {
		return nil, err
	}
	return a.check(ctx, p, hm, observations)
}

func (a *App) check(ctx context.Context, p *ui.Pipeline, hm headers.Map, observations string) (*runner.Summary, error) {
	if observations == "" {
		observations = a.cfg.Checks.Observations
	}
	if observations == "" {
		return nil, fmt.Errorf("%w: checks.observations is not set", model.ErrConfiguration)
	}
	pages, err := observe.Load(observations)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfiguration, err)
	}

	rows, err := a.expectedRows(hm)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(a.cfg.Catalog.Dir, a.section, a.region)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		logger.Warn("No catalog at %s, every product goes through search", catalog.Path(a.cfg.Catalog.Dir, a.section, a.region))
	}

	logger.Info("Checking %d products (%s/%s) against %d observations, catalog %d records",
		len(rows), a.section, a.region, pages.Len(), cat.Len())

	validator := checks.NewValidator(a.section, a.region, pages, a.store)
	run := runner.New(validator, cat, a.region, runner.Options{
		Workers:       a.cfg.Checks.Workers,
		RatePerSecond: a.cfg.Checks.RatePerSecond,
		Burst:         a.cfg.Checks.Burst,
		Timeout:       a.cfg.Checks.Timeout,
	})

	bar := p.NextPhase(len(rows))
	summary, err := run.Run(ctx, rows, bar)
	if err != nil {
		return summary, err
	}
	logger.Info("Checked %d products (%d failed, %d skipped)", summary.Checked, summary.Failed, summary.Skipped)

	// failed checks still count as done: what they recorded is committed
	if err := a.barrier.MarkDone(a.cfg.WorkerID(), summary); err != nil {
		return summary, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	return summary, nil
}

func (a *App) expectedRows(hm headers.Map) ([]model.ExpectedRow, error) {
	wb, err := sheet.Open(a.cfg.Workbook.Path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	grid, err := wb.Rows(a.sheetName())
	if err != nil {
		return nil, err
	}
	return sheet.ParseRows(grid, hm, a.cfg.Workbook.HeaderRows)
}

// Reconcile writes the findings snapshot into the workbook. Non-designated
// workers return a nil result without touching the file.
func (a *App) Reconcile(ctx context.Context) (*reconcile.Result, error) {
	p := a.pipeline(ui.PhaseReconciling)
	defer p.Finish()
	return a.reconcile(ctx, p)
}

func (a *App) reconcile(ctx context.Context, p *ui.Pipeline) (*reconcile.Result, error) {
	if !a.cfg.IsDesignatedWorker() {
		logger.Info("Worker %s skips reconcile", a.cfg.Run.WorkerIndex)
		return nil, nil
	}

	hm, err := a.headers.Load(a.section, a.region.HeaderGroup())
	if err != nil {
		return nil, err
	}
	opts, err := a.cfg.ReconcileOptions(a.section, a.region)
	if err != nil {
		return nil, err
	}
	all, err := a.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	bar := p.NextPhase(1)
	defer bar.Increment()

	res, err := reconcile.NewWriter(hm, opts).Reconcile(ctx, all, a.cfg.Workbook.Path, a.sheetName())
	if res != nil {
		logger.Info("Reconciled %d rows: %d cells appended, %d unchanged, %d highlighted, %d row errors",
			res.RowsProcessed, res.CellsAppended, res.CellsUnchanged, res.Highlighted, len(res.RowErrors))
		// the next cycle's workers start from no markers
		if clearErr := a.barrier.Clear(); clearErr != nil {
			logger.Warn("Failed to clear check markers: %v", clearErr)
		}
	}
	return res, err
}

// Reset clears the workbook's note cells and highlights and empties the store
func (a *App) Reset(ctx context.Context) (int, error) {
	if !a.cfg.IsDesignatedWorker() {
		return 0, fmt.Errorf("%w: reset must run on the designated worker", model.ErrConfiguration)
	}
	p := a.pipeline(ui.PhaseResetting)
	defer p.Finish()
	bar := p.NextPhase(2)

	hm, err := a.headers.Load(a.section, a.region.HeaderGroup())
	if err != nil {
		return 0, err
	}
	opts, err := a.cfg.ReconcileOptions(a.section, a.region)
	if err != nil {
		return 0, err
	}

	cleared, err := reconcile.Clear(ctx, a.cfg.Workbook.Path, a.sheetName(), hm, opts)
	if err != nil {
		return cleared, err
	}
	bar.Increment()

	if err := a.store.Reset(ctx); err != nil {
		return cleared, err
	}
	if err := a.barrier.Clear(); err != nil {
		return cleared, fmt.Errorf("%w: failed to clear check markers: %v", model.ErrIO, err)
	}
	bar.Increment()

	logger.Info("Reset %d cells and the findings store", cleared)
	return cleared, nil
}

// Report exports the findings snapshot in every requested format
func (a *App) Report(ctx context.Context, formats []string) error {
	p := a.pipeline(ui.PhaseReporting)
	defer p.Finish()
	return a.report(ctx, p, formats)
}

func (a *App) report(ctx context.Context, p *ui.Pipeline, formats []string) error {
	if len(formats) == 0 {
		formats = a.cfg.Output.Formats
	}
	exporters := report.GetExporters(formats)
	if len(exporters) == 0 {
		return fmt.Errorf("%w: no known report format in %v", model.ErrConfiguration, formats)
	}

	all, err := a.store.ReadAll(ctx)
	if err != nil {
		return err
	}
	summary := model.NewSummary(time.Now().Format("2006-01-02"), a.section, a.region, all)

	bar := p.NextPhase(len(exporters))
	var exportErrors []error
	for _, exp := range exporters {
		if err := exp.Export(summary, a.cfg); err != nil {
			logger.Error("Export failed: %v", err)
			exportErrors = append(exportErrors, err)
		}
		bar.Increment()
	}

	// Return error if any exports failed
	if len(exportErrors) > 0 {
		return fmt.Errorf("one or more exports failed: %w", errors.Join(exportErrors...))
	}
	logger.Info("Reports written to %s", a.cfg.Output.Dir)
	return nil
}

// Run executes setup, checks, reconcile and report in order. Check failures
// do not stop the run: whatever was recorded is still reconciled. Workers
// other than the designated one stop after their checks; the designated one
// waits for run.workers processes to report done before reconciling.
func (a *App) Run(ctx context.Context, observations string, formats []string) error {
	designated := a.cfg.IsDesignatedWorker()
	phases := []ui.Phase{ui.PhaseSetup, ui.PhaseChecking}
	if designated {
		phases = append(phases, ui.PhaseReconciling, ui.PhaseReporting)
	}
	p := a.pipeline(phases...)
	defer p.Finish()

	hm, err := a.setup(ctx, p)
	if err != nil {
		return err
	}

	summary, err := a.check(ctx, p, hm, observations)
	if err != nil {
		return err
	}

	var runErrors []error
	if err := summary.Err(); err != nil {
		runErrors = append(runErrors, fmt.Errorf("%d checks failed: %w", summary.Failed, err))
	}
	if !designated {
		return errors.Join(runErrors...)
	}

	if err := a.waitForWorkers(ctx); err != nil {
		if !errors.Is(err, model.ErrWorkersPending) {
			return errors.Join(append(runErrors, err)...)
		}
		logger.Warn("%v; reconciling what was recorded so far", err)
		runErrors = append(runErrors, err)
	}

	if res, err := a.reconcile(ctx, p); err != nil {
		// a nil result means the workbook was never written
		if res == nil {
			return errors.Join(append(runErrors, err)...)
		}
		runErrors = append(runErrors, err)
	}

	if err := a.report(ctx, p, formats); err != nil {
		runErrors = append(runErrors, err)
	}

	return errors.Join(runErrors...)
}

func (a *App) waitForWorkers(ctx context.Context) error {
	expected := a.cfg.ExpectedWorkers()
	if expected <= 1 {
		return nil
	}
	logger.Info("Waiting for %d check workers (up to %s)...", expected, a.cfg.Run.WaitTimeout)
	if err := a.barrier.Wait(ctx); err != nil {
		return err
	}
	done, _ := a.barrier.Done()
	logger.Info("All check workers done: %v", done)
	return nil
}

// Serve exposes the findings store over HTTP until ctx is cancelled
func (a *App) Serve(ctx context.Context) error {
	router := api.SetupRouter(a.cfg.Server.Environment, api.NewHandler(a.store, a.version))
	return api.Serve(ctx, a.cfg.Server.Addr, router)
}
