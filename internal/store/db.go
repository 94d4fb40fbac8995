package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the executor a store runs its queries against. Both
// *sql.DB and *sql.Tx satisfy it, so the same store implementation serves
// standalone calls and calls inside a transaction (see ProfileStore.WithTx).
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
