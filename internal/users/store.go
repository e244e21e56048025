// Package users wires the generic CRUD stack for the User entity.
// Writes hash the incoming password before it reaches the row and
// resolve the role_ids relationship payload inside the transaction.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/roles"
	"github.com/accessd/accessd/internal/shared"
)

// Resource is the permission resource name guarding this entity.
const Resource = "users"

const table = "users"

var columns = []string{"username", "email", "password_hash", "is_active"}

// NewStore constructs the PostgreSQL store for users.
func NewStore(pool *pgxpool.Pool) *crud.PGStore[rbac.User] {
	return crud.NewPGStore[rbac.User](pool, table, columns, Load)
}

// Load fetches one user by id with roles and their permissions
// attached.
func Load(ctx context.Context, db crud.DBTX, id int64) (*rbac.User, error) {
	var u rbac.User
	err := db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, is_active, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	u.Roles, err = roles.LoadForUser(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ReplaceRoles swaps a user's role set for the given ids. Unknown ids
// are ignored rather than rejected.
func ReplaceRoles(ctx context.Context, db crud.DBTX, userID int64, roleIDs []int64) error {
	if _, err := db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return nil
	}
	_, err := db.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT $1, id FROM roles WHERE id = ANY($2)
		 ON CONFLICT DO NOTHING`, userID, roleIDs)
	return err
}
