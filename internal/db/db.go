package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"gearxchange/internal/config"
)

// DB wraps a SQLite database connection together with its lifecycle.
type DB struct {
	*sql.DB

	path      string
	ephemeral bool
}

// Open creates or opens the SQLite database described by cfg and applies
// all migrations. An ephemeral database is recreated from scratch: any
// file left behind by a previous run (for example after an unclean exit)
// is removed first.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	if cfg.Ephemeral {
		if err := os.Remove(cfg.Path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale database %s: %w", cfg.Path, err)
		}
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	sqlDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Path, err)
	}

	// Enable WAL mode for better concurrent read performance.
	// NOTE: On some filesystems changing journal modes can fail with
	// "disk I/O error". In that case we log and continue with SQLite's
	// default journaling rather than refusing to start.
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Printf("Warning: failed to enable WAL mode (%v); continuing without WAL", err)
	}

	// Reduce SQLITE_BUSY failures under concurrent writers.
	_, _ = sqlDB.Exec("PRAGMA busy_timeout = 5000")

	// Enable foreign keys
	if _, err := sqlDB.Exec("PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{DB: sqlDB, path: cfg.Path, ephemeral: cfg.Ephemeral}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// migrate runs all database migrations.
func (db *DB) migrate() error {
	// Create migrations tracking table
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for i, m := range migrations {
		version := i + 1
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", version, err)
		}
		if count > 0 {
			continue
		}

		log.Printf("Running migration %d: %s", version, m.name)
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %d (%s): %w", version, m.name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("record migration %d: %w", version, err)
		}
	}

	return nil
}

// Cleanup closes the connection and, for ephemeral databases, removes the
// backing file. Safe to call after a failed Close.
func (db *DB) Cleanup() error {
	if err := db.Close(); err != nil {
		log.Printf("Warning: closing database: %v", err)
	}
	if !db.ephemeral {
		return nil
	}
	if err := os.Remove(db.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove database %s: %w", db.path, err)
	}
	// WAL side files linger if the WAL pragma succeeded.
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(db.path + suffix)
	}
	return nil
}
