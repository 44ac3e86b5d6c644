// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// FileName is the database file created inside the cache directory.
const FileName = "results.db"

// Bump when the results table changes; older databases are dropped and rebuilt.
const schemaVersion = 1

const resultsSchema = `
CREATE TABLE IF NOT EXISTS results (
    kind       TEXT    NOT NULL,
    key        TEXT    NOT NULL,
    payload    BLOB,
    created_at INTEGER NOT NULL, -- UnixNano
    PRIMARY KEY (kind, key)
);
`

type (
	// SQLiteStore implements Store on a single SQLite file.
	SQLiteStore struct {
		db     *sql.DB
		clock  Clock
		logger *log.Logger
	}

	// Option configures a SQLiteStore.
	Option func(*SQLiteStore)
)

// WithClock replaces the wall clock used to stamp and age entries.
func WithClock(c Clock) Option {
	return func(s *SQLiteStore) { s.clock = c }
}

// WithLogger sets the logger used for schema migrations. Without it the store logs
// nothing.
func WithLogger(l *log.Logger) Option {
	return func(s *SQLiteStore) { s.logger = l }
}

// Open opens (creating when needed) the cache database at dbPath.
func Open(ctx context.Context, dbPath string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dsn := dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// One connection serializes writers from concurrent goroutines.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, clock: systemClock{}, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = 0
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if current != schemaVersion {
		if current != 0 {
			s.logger.Info("rebuilding result cache", "from", current, "to", schemaVersion)
		}
		stmts := []string{
			"DROP TABLE IF EXISTS results",
			"DELETE FROM schema_version",
		}
		for _, stmt := range stmts {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration failed on %q: %w", stmt, err)
			}
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("failed to update schema version: %w", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, resultsSchema); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, kind Kind, key string, maxAge time.Duration) ([]byte, bool, error) {
	if maxAge <= 0 {
		return nil, false, nil
	}

	var (
		payload   []byte
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, created_at FROM results WHERE kind = ? AND key = ?",
		string(kind), key,
	).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s/%s: %w", kind, key, err)
	}

	if s.clock.Now().Sub(time.Unix(0, createdAt)) >= maxAge {
		return nil, false, nil
	}
	return payload, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, kind Kind, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO results (kind, key, payload, created_at) VALUES (?, ?, ?, ?)",
		string(kind), key, payload, s.clock.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s/%s: %w", kind, key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, kind Kind) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM results WHERE kind = ?", string(kind)); err != nil {
		return fmt.Errorf("failed to delete %s entries: %w", kind, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM results")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared entries: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
