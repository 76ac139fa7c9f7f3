package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// ConnKey carries a transaction-scoped connection through a context so that
// repositories participate in an enclosing transaction without knowing about it.
const ConnKey contextKey = "db_conn"

// Queryable is the subset of pgx operations shared by pools, connections, and
// transactions. Repositories accept whichever the context provides.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// ConnFromContext retrieves the transaction-scoped queryable from context, or
// nil when the caller did not open a transaction.
func ConnFromContext(ctx context.Context) Queryable {
	q, _ := ctx.Value(ConnKey).(Queryable)
	return q
}

// WithTx runs fn inside a transaction. The transaction is placed in the
// context passed to fn, so repository calls made with that context share it.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	return withTx(ctx, pool, pgx.TxOptions{}, fn)
}

// WithSnapshotTx runs fn inside a REPEATABLE READ read-only transaction.
// Snapshot loads use it so relationships, providers, and payers are all read
// at one logical point in time.
func WithSnapshotTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	return withTx(ctx, pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func withTx(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, ConnKey, Queryable(tx))); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
