package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS targets (
		context          TEXT PRIMARY KEY,
		username         TEXT NOT NULL DEFAULT '',
		time_window      TEXT NOT NULL DEFAULT 'year',
		theme            TEXT NOT NULL DEFAULT 'light',
		shard            INTEGER NOT NULL DEFAULT 0,
		refresh_minutes  INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS calendars (
		username    TEXT PRIMARY KEY,
		total       INTEGER NOT NULL DEFAULT 0,
		weeks       TEXT NOT NULL,
		fetched_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS renders (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		context     TEXT NOT NULL,
		username    TEXT NOT NULL DEFAULT '',
		time_window TEXT NOT NULL,
		theme       TEXT NOT NULL,
		shard       INTEGER NOT NULL DEFAULT 0,
		title       TEXT NOT NULL,
		bytes       INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_renders_context ON renders(context);
	CREATE INDEX IF NOT EXISTS idx_renders_created ON renders(created_at);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('preview_user',   ''),
		('preview_window', 'year'),
		('preview_theme',  'dark'),
		('preview_shard',  '0'),
		('preview_view',   'button');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns <UserConfigDir>/contribdeck/contribdeck.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "contribdeck", "contribdeck.db"), nil
}
