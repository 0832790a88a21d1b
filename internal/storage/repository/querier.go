// Package repository contains the database repositories for decks, cards,
// deck versions, and match history.
package repository

import (
	"context"
	"database/sql"
)

// Querier is the subset of database operations shared by *sql.DB and
// *sql.Tx. Repositories run against it so the same code serves both plain
// calls and calls inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
