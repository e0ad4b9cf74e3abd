package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"pdp-recon/internal/logger"
	"pdp-recon/internal/model"
)

const barrierPollInterval = 500 * time.Millisecond

// Marker is the record a worker process leaves once its checks are done
type Marker struct {
	Worker     string    `json:"worker"`
	Checked    int       `json:"checked"`
	Failed     int       `json:"failed"`
	FinishedAt time.Time `json:"finished_at"`
}

// Barrier lets the designated worker wait until every check process of a
// section and region has finished. Each process publishes one marker file
// under the artifacts directory; markers are cleared once a reconcile has
// consumed them or on reset.
type Barrier struct {
	dir     string
	region  model.Region
	workers int
	timeout time.Duration
}

// NewBarrier creates a barrier for workers processes. timeout bounds Wait.
func NewBarrier(artifactsDir string, section model.Section, region model.Region, workers int, timeout time.Duration) *Barrier {
	if workers < 1 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Barrier{
		dir:     filepath.Join(artifactsDir, string(section)),
		region:  region,
		workers: workers,
		timeout: timeout,
	}
}

func (b *Barrier) prefix() string {
	return fmt.Sprintf("checks-done-%s-w", b.region.Lower())
}

// Path returns the marker file of one worker
func (b *Barrier) Path(worker string) string {
	return filepath.Join(b.dir, b.prefix()+worker+".json")
}

// MarkDone publishes the worker's marker. Writing it again replaces it.
func (b *Barrier) MarkDone(worker string, summary *Summary) error {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}

	m := Marker{Worker: worker, FinishedAt: time.Now().UTC()}
	if summary != nil {
		m.Checked, m.Failed = summary.Checked, summary.Failed
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode marker: %w", err)
	}

	tmp, err := os.CreateTemp(b.dir, ".checks-done-*.json")
	if err != nil {
		return fmt.Errorf("failed to create marker: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write marker: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close marker: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.Path(worker)); err != nil {
		return fmt.Errorf("failed to publish marker: %w", err)
	}
	return nil
}

// Done lists the workers that published a marker, sorted
func (b *Barrier) Done() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(b.dir, b.prefix()+"*.json"))
	if err != nil {
		return nil, err
	}
	workers := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".json")
		workers = append(workers, strings.TrimPrefix(name, b.prefix()))
	}
	slices.Sort(workers)
	return workers, nil
}

// Wait polls until the expected number of workers are done. On timeout it
// returns ErrWorkersPending; the caller decides whether to go on with what
// was recorded.
func (b *Barrier) Wait(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	ticker := time.NewTicker(barrierPollInterval)
	defer ticker.Stop()
	for {
		done, err := b.Done()
		if err != nil {
			return fmt.Errorf("%w: failed to list markers: %v", model.ErrIO, err)
		}
		if len(done) >= b.workers {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("%w: %d of %d done after %s (done: %v)",
				model.ErrWorkersPending, len(done), b.workers, b.timeout, done)
		case <-ticker.C:
			logger.Debug("Waiting for check workers: %d of %d done", len(done), b.workers)
		}
	}
}

// Clear removes every marker of the section and region
func (b *Barrier) Clear() error {
	matches, err := filepath.Glob(filepath.Join(b.dir, b.prefix()+"*.json"))
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
