// Package storage provides SQLite persistence for the trip API server.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultFile is the database file name inside the data directory.
const DefaultFile = "tripboard.db"

const (
	maxOpenConns = 5
	maxIdleConns = 2
)

// DB is the trip API database.
type DB struct {
	*sql.DB
	path string
}

// OpenInDir opens DefaultFile inside dir.
func OpenInDir(dir string) (*DB, error) {
	return NewDB(filepath.Join(dir, DefaultFile))
}

// NewDB opens the SQLite file at path, creating parent directories.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	return &DB{DB: db, path: path}, nil
}

// dsn enables foreign keys, so point_offers cannot reference a missing
// offer, and WAL, so reads proceed during a write.
func dsn(path string) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_synchronous", "NORMAL")
	return path + "?" + q.Encode()
}

// Path returns the filesystem path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Transaction runs fn in a transaction, committing only when fn succeeds.
func (db *DB) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
