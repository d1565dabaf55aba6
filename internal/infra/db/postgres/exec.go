package postgres

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wellness-companion/internal/domain/ports/repository"
)

// executor is the least common surface shared by the pool, a pooled
// connection, and an open transaction.
type executor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// pick resolves qx to a concrete executor, falling back to the pool when no
// transaction handle was threaded through.
func pick(pool *pgxpool.Pool, qx repository.Tx) executor {
	switch v := qx.(type) {
	case pgx.Tx:
		return v
	case *pgxpool.Conn:
		return v
	case *pgxpool.Pool:
		return v
	default:
		return pool
	}
}
