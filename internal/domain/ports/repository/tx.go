package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Repositories type-assert it to the
// backend's concrete transaction (pgx.Tx for Postgres) and fall back to the
// pool when it is NoTX.
type Tx interface{}

// NoTX selects the non-transactional path on repository methods.
var NoTX interface{}

// TransactionManager runs fn with a transaction handle that every repository
// call inside fn must be given, so multi-table writes commit or roll back as
// one unit. Account deletion is the main consumer: the user row, their
// conversations, mood entries and feedback go in a single transaction.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
