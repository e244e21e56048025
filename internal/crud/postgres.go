package crud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accessd/accessd/internal/platform/db"
	"github.com/accessd/accessd/internal/shared"
)

const uniqueViolationCode = "23505"

// Loader fetches one fully-populated entity, associations included.
// It returns an error wrapping shared.ErrNotFound when the id does not
// exist.
type Loader[T any] func(ctx context.Context, db DBTX, id int64) (*T, error)

// PGStore is the PostgreSQL implementation of Store for one table.
type PGStore[T any] struct {
	pool    *pgxpool.Pool
	table   string
	columns map[string]struct{}
	load    Loader[T]
}

// NewPGStore constructs a store over the named table. columns is the
// allowlist of writable/filterable column names; anything outside it is
// rejected before reaching SQL.
func NewPGStore[T any](pool *pgxpool.Pool, table string, columns []string, load Loader[T]) *PGStore[T] {
	allowed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return &PGStore[T]{pool: pool, table: table, columns: allowed, load: load}
}

// Get fetches a single entity by id.
func (s *PGStore[T]) Get(ctx context.Context, id int64) (*T, error) {
	return s.load(ctx, s.pool, id)
}

// GetByField fetches a single entity by exact match on one column.
func (s *PGStore[T]) GetByField(ctx context.Context, field string, value any) (*T, error) {
	if err := s.checkColumn(field); err != nil {
		return nil, err
	}
	var id int64
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE %s = $1 LIMIT 1`, s.table, field), value)
	if err := row.Scan(&id); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s with %s", shared.ErrNotFound, s.table, field)
		}
		return nil, err
	}
	return s.load(ctx, s.pool, id)
}

// List returns entities in id order with offset pagination.
func (s *PGStore[T]) List(ctx context.Context, skip, limit int) ([]*T, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT id FROM %s ORDER BY id OFFSET $1 LIMIT $2`, s.table), skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		ent, err := s.load(ctx, s.pool, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ent)
	}
	return out, nil
}

// Count returns the total number of rows in the table.
func (s *PGStore[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)).Scan(&n)
	return n, err
}

// Create inserts the scalar fields, runs the post hook in the same
// transaction and returns the reloaded entity.
func (s *PGStore[T]) Create(ctx context.Context, scalars Fields, post HookFunc) (*T, error) {
	names := scalars.Names()
	for _, name := range names {
		if err := s.checkColumn(name); err != nil {
			return nil, err
		}
	}

	cols := strings.Join(names, ", ")
	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = scalars[name]
	}

	var ent *T
	err := s.withTx(ctx, func(tx DBTX) error {
		var id int64
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`, s.table, cols, strings.Join(placeholders, ", "))
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			return translateConstraint(err)
		}
		if post != nil {
			if err := post(ctx, tx, id); err != nil {
				return translateConstraint(err)
			}
		}
		var err error
		ent, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ent, nil
}

// Update applies the scalar fields to an existing row, runs the post
// hook in the same transaction and returns the reloaded entity. An
// update carrying only relationship fields still verifies existence.
func (s *PGStore[T]) Update(ctx context.Context, id int64, scalars Fields, post HookFunc) (*T, error) {
	names := scalars.Names()
	for _, name := range names {
		if err := s.checkColumn(name); err != nil {
			return nil, err
		}
	}

	var ent *T
	err := s.withTx(ctx, func(tx DBTX) error {
		if len(names) > 0 {
			assignments := make([]string, len(names))
			args := make([]any, 0, len(names)+1)
			for i, name := range names {
				assignments[i] = fmt.Sprintf("%s = $%d", name, i+1)
				args = append(args, scalars[name])
			}
			args = append(args, id)
			query := fmt.Sprintf(`UPDATE %s SET %s, updated_at = now() WHERE id = $%d`,
				s.table, strings.Join(assignments, ", "), len(names)+1)
			tag, err := tx.Exec(ctx, query, args...)
			if err != nil {
				return translateConstraint(err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: %s %d", shared.ErrNotFound, s.table, id)
			}
		} else {
			var exists bool
			if err := tx.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, s.table), id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %s %d", shared.ErrNotFound, s.table, id)
			}
		}
		if post != nil {
			if err := post(ctx, tx, id); err != nil {
				return translateConstraint(err)
			}
		}
		var err error
		ent, err = s.load(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ent, nil
}

// Delete removes the row; association rows go with it through the FK
// cascades. Returns false when the id does not exist.
func (s *PGStore[T]) Delete(ctx context.Context, id int64, pre HookFunc) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx DBTX) error {
		if pre != nil {
			if err := pre(ctx, tx, id); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), id)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *PGStore[T]) withTx(ctx context.Context, fn func(tx DBTX) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

func (s *PGStore[T]) checkColumn(name string) error {
	if _, ok := s.columns[name]; !ok {
		return fmt.Errorf("crud: unknown column %q for table %s", name, s.table)
	}
	return nil
}

// translateConstraint maps unique violations to the conflict error,
// passing the driver's message through verbatim.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		detail := pgErr.Message
		if pgErr.Detail != "" {
			detail = detail + ": " + pgErr.Detail
		}
		return fmt.Errorf("%w: %s", shared.ErrConflict, detail)
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
