package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es lo que comparten *pgxpool.Pool y pgx.Tx: los repositorios funcionan igual dentro y
// fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// DB es un Querier que además abre transacciones (el pool, o una tx que abre savepoints).
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgxScanner abstrae pgx.Row y pgx.Rows para reutilizar los scan.
type pgxScanner interface {
	Scan(dest ...any) error
}
