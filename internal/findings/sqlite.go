package findings

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"pdp-recon/internal/model"
	"pdp-recon/internal/notes"
)

const schema = `
CREATE TABLE IF NOT EXISTS findings (
	product_id      INTEGER PRIMARY KEY,
	pricing_correct INTEGER NOT NULL DEFAULT 1,
	updated_at      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS finding_notes (
	product_id INTEGER NOT NULL REFERENCES findings(product_id),
	category   TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	message    TEXT NOT NULL,
	PRIMARY KEY (product_id, category, seq)
);`

// SQLiteStore shares findings between worker processes through one
// database file. Writers use IMMEDIATE transactions so the read-merge-write
// of a product is atomic across processes; the in-process keyed mutex keeps
// goroutines of the same process from queueing on the database lock.
type SQLiteStore struct {
	db   *sql.DB
	path string
	keys *keyedMutex
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string, busyTimeout time.Duration) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: store.path is empty", model.ErrConfiguration)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create store directory: %v", model.ErrIO, err)
	}
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}

	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Set("_txlock", "immediate")
	dsn := path + "?" + q.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open findings store: %v", model.ErrIO, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to initialise findings store: %v", model.ErrIO, err)
	}

	return &SQLiteStore{db: db, path: path, keys: newKeyedMutex()}, nil
}

// Path returns the database file
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) UpsertAppend(ctx context.Context, productID int, category model.Category, message string) error {
	if err := validate(productID, category); err != nil {
		return err
	}

	unlock := s.keys.Lock(productID)
	defer unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureRow(ctx, tx, productID); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT message FROM finding_notes WHERE product_id = ? AND category = ? ORDER BY seq`,
			productID, string(category))
		if err != nil {
			return err
		}
		var fragments []string
		for rows.Next() {
			var m string
			if err := rows.Scan(&m); err != nil {
				rows.Close()
				return err
			}
			fragments = append(fragments, m)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		merged, added := notes.Merge(fragments, message)
		if !added {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO finding_notes (product_id, category, seq, message) VALUES (?, ?, ?, ?)`,
			productID, string(category), len(merged)-1, merged[len(merged)-1])
		return err
	})
}

func (s *SQLiteStore) SetPricingCorrect(ctx context.Context, productID int, correct bool) error {
	if err := validateID(productID); err != nil {
		return err
	}

	unlock := s.keys.Lock(productID)
	defer unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO findings (product_id, pricing_correct, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(product_id) DO UPDATE SET pricing_correct = excluded.pricing_correct, updated_at = excluded.updated_at`,
			productID, boolInt(correct), now())
		return err
	})
}

// ReadAll reads findings and their notes in one statement so a product
// committed mid-read is either fully present or absent.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]model.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.product_id, f.pricing_correct, n.category, n.message
		FROM findings f
		LEFT JOIN finding_notes n ON n.product_id = f.product_id
		ORDER BY f.product_id, n.category, n.seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read findings: %v", model.ErrIO, err)
	}
	defer rows.Close()

	var result []model.Finding
	var fragments map[model.Category][]string
	flush := func() {
		if len(result) == 0 {
			return
		}
		f := &result[len(result)-1]
		for c, frags := range fragments {
			f.SetFragments(c, frags)
		}
	}

	for rows.Next() {
		var id, correct int
		var category, message sql.NullString
		if err := rows.Scan(&id, &correct, &category, &message); err != nil {
			return nil, fmt.Errorf("%w: failed to read findings: %v", model.ErrIO, err)
		}
		if len(result) == 0 || result[len(result)-1].ProductID != id {
			flush()
			f := model.NewFinding(id)
			f.PricingCorrect = correct != 0
			result = append(result, *f)
			fragments = make(map[model.Category][]string)
		}
		if category.Valid {
			c := model.Category(category.String)
			fragments[c] = append(fragments[c], message.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read findings: %v", model.ErrIO, err)
	}
	flush()
	return result, nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM finding_notes`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM findings`)
		return err
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// inTx runs fn in one IMMEDIATE transaction
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", model.ErrIO, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", model.ErrIO, err)
	}
	return nil
}

func ensureRow(ctx context.Context, tx *sql.Tx, productID int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO findings (product_id, pricing_correct, updated_at) VALUES (?, 1, ?)`,
		productID, now())
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
