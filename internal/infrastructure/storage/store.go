package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bookmarks (
		identifier  TEXT PRIMARY KEY,
		article_id  BIGINT NOT NULL UNIQUE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL,
		added_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS preferences (
		id           INTEGER PRIMARY KEY,
		language     TEXT NOT NULL,
		detail_level TEXT NOT NULL
	)`,
}

// Store owns the database handle shared by the repositories.
type Store struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
}

// Open connects to sqlite or postgres and creates missing tables.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var placeholders sq.PlaceholderFormat
	switch driver {
	case DriverSQLite:
		placeholders = sq.Question
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres:
		placeholders = sq.Dollar
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &Store{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholders),
	}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Bookmarks returns the bookmark repository backed by this store.
func (s *Store) Bookmarks() *BookmarkRepository {
	return &BookmarkRepository{store: s}
}

// Preferences returns the preference repository backed by this store.
func (s *Store) Preferences() *PreferenceRepository {
	return &PreferenceRepository{store: s}
}

func ensureSQLiteDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}
