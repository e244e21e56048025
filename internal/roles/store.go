// Package roles wires the generic CRUD stack for the Role entity.
// Roles carry a permission_ids relationship payload resolved by the
// post hooks inside the write transaction.
package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/permissions"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/shared"
)

// Resource is the permission resource name guarding this entity.
const Resource = "roles"

const table = "roles"

var columns = []string{"name", "description"}

// NewStore constructs the PostgreSQL store for roles.
func NewStore(pool *pgxpool.Pool) *crud.PGStore[rbac.Role] {
	return crud.NewPGStore[rbac.Role](pool, table, columns, Load)
}

// Load fetches one role by id with its permissions attached.
func Load(ctx context.Context, db crud.DBTX, id int64) (*rbac.Role, error) {
	var r rbac.Role
	err := db.QueryRow(ctx,
		`SELECT id, name, description, created_at, updated_at
		 FROM roles WHERE id = $1`, id,
	).Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: role %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	r.Permissions, err = permissions.LoadForRole(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadForUser returns the roles assigned to a user, permissions
// included, in assignment order.
func LoadForUser(ctx context.Context, db crud.DBTX, userID int64) ([]rbac.Role, error) {
	rows, err := db.Query(ctx,
		`SELECT r.id, r.name, r.description, r.created_at, r.updated_at
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY ur.created_at, r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rbac.Role
	for rows.Next() {
		var r rbac.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Permissions, err = permissions.LoadForRole(ctx, db, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReplacePermissions swaps a role's permission set for the given ids.
// Unknown ids are ignored rather than rejected.
func ReplacePermissions(ctx context.Context, db crud.DBTX, roleID int64, permissionIDs []int64) error {
	if _, err := db.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return err
	}
	if len(permissionIDs) == 0 {
		return nil
	}
	_, err := db.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id)
		 SELECT $1, id FROM permissions WHERE id = ANY($2)
		 ON CONFLICT DO NOTHING`, roleID, permissionIDs)
	return err
}
