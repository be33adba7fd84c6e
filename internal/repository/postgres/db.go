package postgres

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql used by the order, driver and audit
// repositories. Both *sql.DB and *sql.Tx satisfy it, so the same repository
// code runs against the pool or inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)
