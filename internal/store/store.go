package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// ExerciseRepo returns an ExerciseRepo backed by this store.
func (s *Store) ExerciseRepo() ExerciseRepo {
	return &exerciseRepo{db: s.db}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. MUSICMAPPING_DB environment variable
// 2. $XDG_DATA_HOME/musicmapping/library.db
// 3. ~/.local/share/musicmapping/library.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MUSICMAPPING_DB"); p != "" {
		return p, EnsureDir(p)
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "library.db")
	return p, EnsureDir(p)
}

// DataDir returns the application data directory, honouring XDG_DATA_HOME.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "musicmapping"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
