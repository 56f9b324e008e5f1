package db

import (
	"context"
	"database/sql"
	"errors"
)

// ErrStale is returned by ExecVersioned when the version guard matched no row.
var ErrStale = errors.New("stale row version")

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ExecVersioned runs a write whose WHERE clause checks a row version and
// returns ErrStale when no row was written.
func ExecVersioned(ctx context.Context, ex Execer, query string, args ...any) error {
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStale
	}
	return nil
}
