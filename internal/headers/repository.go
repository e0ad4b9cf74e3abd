package headers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"pdp-recon/internal/logger"
	"pdp-recon/internal/model"
)

const lockRetryDelay = 100 * time.Millisecond

// Repository persists header maps, one JSON document per (section, group)
type Repository struct {
	dir         string
	lockTimeout time.Duration
}

// NewRepository stores maps under dir. lockTimeout bounds the wait for
// another process that is generating the same map.
func NewRepository(dir string, lockTimeout time.Duration) *Repository {
	if lockTimeout <= 0 {
		lockTimeout = 30 * time.Second
	}
	return &Repository{dir: dir, lockTimeout: lockTimeout}
}

// Path returns the deterministic document path for a section and group
func (r *Repository) Path(section model.Section, group model.HeaderGroup) string {
	return filepath.Join(r.dir, string(section), fmt.Sprintf("header-index-map-%s.json", group.Lower()))
}

// Exists reports whether the map was already generated
func (r *Repository) Exists(section model.Section, group model.HeaderGroup) bool {
	_, err := os.Stat(r.Path(section, group))
	return err == nil
}

// Save writes the map atomically (temp file + rename) so readers never see
// a half-written document.
func (r *Repository) Save(section model.Section, group model.HeaderGroup, m Map) error {
	path := r.Path(section, group)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create header map directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode header map: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".header-map-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp header map: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header map: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close header map: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to publish header map: %w", err)
	}
	return nil
}

// Load reads a previously saved map
func (r *Repository) Load(section model.Section, group model.HeaderGroup) (Map, error) {
	path := r.Path(section, group)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %s/%s (did setup run?)",
				model.ErrConfiguration, model.ErrHeaderMapMissing, section, group)
		}
		return nil, fmt.Errorf("%w: failed to read header map: %v", model.ErrIO, err)
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: corrupt header map %s: %v", model.ErrConfiguration, path, err)
	}
	return m, nil
}

// Ensure is the single-writer setup step: under a cross-process file lock
// it builds and saves the map only when absent, then loads it. headerRow is
// called only when a build is needed.
func (r *Repository) Ensure(ctx context.Context, section model.Section, group model.HeaderGroup, headerRow func() ([]string, error)) (Map, error) {
	path := r.Path(section, group)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create header map directory: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, r.lockTimeout)
	defer cancel()

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		return nil, fmt.Errorf("failed to acquire header map lock %s within %s: %v", lock.Path(), r.lockTimeout, err)
	}
	defer lock.Unlock()

	if r.Exists(section, group) {
		logger.Info("Header map exists for %s/%s", section, group)
		return r.Load(section, group)
	}

	row, err := headerRow()
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, fmt.Errorf("%w: header row missing for %s/%s", model.ErrConfiguration, section, group)
	}

	m := Build(row)
	if err := r.Save(section, group, m); err != nil {
		return nil, err
	}
	logger.Info("Header map saved for %s/%s (%d headers)", section, group, len(m))
	return m, nil
}

// Wait loads a map generated by another process, polling until it appears
// or the lock timeout elapses. Non-designated workers use it instead of
// Ensure so only one process ever parses the header row.
func (r *Repository) Wait(ctx context.Context, section model.Section, group model.HeaderGroup) (Map, error) {
	ctx, cancel := context.WithTimeout(ctx, r.lockTimeout)
	defer cancel()

	ticker := time.NewTicker(lockRetryDelay * 5)
	defer ticker.Stop()
	for {
		m, err := r.Load(section, group)
		if !errors.Is(err, model.ErrHeaderMapMissing) {
			return m, err
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-ticker.C:
		}
	}
}
