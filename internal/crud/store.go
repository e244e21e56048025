package crud

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so loaders and
// hooks run against whichever handle the current operation holds.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HookFunc runs inside the transaction of a write operation, after the
// scalar write (post hooks) or before the row removal (pre-delete).
type HookFunc func(ctx context.Context, db DBTX, id int64) error

// Store abstracts row-level persistence for one entity table. Write
// operations are atomic: the scalar write and the hook run in a single
// transaction, rolled back together on any error.
type Store[T any] interface {
	Get(ctx context.Context, id int64) (*T, error)
	GetByField(ctx context.Context, field string, value any) (*T, error)
	List(ctx context.Context, skip, limit int) ([]*T, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, scalars Fields, post HookFunc) (*T, error)
	Update(ctx context.Context, id int64, scalars Fields, post HookFunc) (*T, error)
	Delete(ctx context.Context, id int64, pre HookFunc) (bool, error)
}
