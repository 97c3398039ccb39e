// Package dbx contains the database plumbing shared by the repositories.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the slice of database/sql the repositories are written against.
// Both *sql.DB and *sql.Tx satisfy it, so the same repository code runs on
// the pooled handle or inside an open transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, passes it to fn, and commits when fn returns
// nil. Any error rolls back; a panic rolls back and is rethrown. The vault
// uses it wherever a token transition and a record write must land together.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
