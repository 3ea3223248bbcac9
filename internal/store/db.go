package store

import (
	"context"
	"database/sql"
)

// DBTX is the slice of database/sql used by the SQL-backed stores.
// Both *sql.DB and *sql.Tx satisfy it, so a store can run against a
// plain connection or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
