// Package catalog keeps a SQLite index of every snapshot written to
// disk. The files remain the source of truth; the catalog exists so a
// run can be audited without scanning the data directory.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dpatel/binance-collector/internal/snapshot"
)

const defaultPath = "binance_data/catalog.db"

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the catalog database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure catalog dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	prefix TEXT NOT NULL,
	filename TEXT NOT NULL,
	captured_at TEXT NOT NULL,
	bytes INTEGER NOT NULL,
	sha256 TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_run_idx ON snapshots(run_id);
CREATE INDEX IF NOT EXISTS snapshots_prefix_idx ON snapshots(prefix, captured_at);
`

// Init ensures the snapshots table exists.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

func (s *Store) Name() string {
	return "catalog"
}

// Record inserts one row per saved snapshot. Insert-only; rows are never
// updated or deleted by this system.
func (s *Store) Record(ctx context.Context, rec snapshot.SavedRecord, _ []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, run_id, prefix, filename, captured_at, bytes, sha256, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		rec.RunID,
		rec.Prefix,
		rec.Filename,
		rec.CapturedAt.UTC().Format(time.RFC3339),
		rec.Bytes,
		rec.SHA256,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// CountByRun reports how many snapshots a run has recorded so far.
func (s *Store) CountByRun(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snapshots WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
