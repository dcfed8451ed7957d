package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Queryable is satisfied by both *sql.DB and *sql.Tx, so helpers can run
// inside or outside a transaction.
type Queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BaseRepository is embedded by every repository. It owns the connection
// and the clock behind created_at and updated_at.
type BaseRepository struct {
	db  *DB
	now func() time.Time
}

// NewBaseRepository creates a base repository on db.
func NewBaseRepository(db *DB) BaseRepository {
	return BaseRepository{db: db, now: time.Now}
}

// Now returns the row timestamp, always UTC.
func (r *BaseRepository) Now() time.Time {
	return r.now().UTC()
}

// Transaction runs fn in a transaction on the repository's database.
func (r *BaseRepository) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return r.db.Transaction(ctx, fn)
}

// GenerateID returns a fresh primary key.
func GenerateID() string {
	return uuid.NewString()
}

// mustAffect turns an UPDATE or DELETE that touched no row into ErrNotFound.
func mustAffect(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
