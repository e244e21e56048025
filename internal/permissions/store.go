// Package permissions wires the generic CRUD stack for the Permission
// entity. Permissions have no relationship payloads, so the default
// hooks apply unchanged.
package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/shared"
)

// Resource is the permission resource name guarding this entity.
const Resource = "permissions"

const table = "permissions"

var columns = []string{"name", "description", "resource", "action"}

// NewStore constructs the PostgreSQL store for permissions.
func NewStore(pool *pgxpool.Pool) *crud.PGStore[rbac.Permission] {
	return crud.NewPGStore[rbac.Permission](pool, table, columns, Load)
}

// Load fetches one permission by id.
func Load(ctx context.Context, db crud.DBTX, id int64) (*rbac.Permission, error) {
	var p rbac.Permission
	err := db.QueryRow(ctx,
		`SELECT id, name, description, resource, action, created_at, updated_at
		 FROM permissions WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: permission %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

// LoadForRole returns the permissions attached to a role, in attachment
// order.
func LoadForRole(ctx context.Context, db crud.DBTX, roleID int64) ([]rbac.Permission, error) {
	rows, err := db.Query(ctx,
		`SELECT p.id, p.name, p.description, p.resource, p.action, p.created_at, p.updated_at
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1
		 ORDER BY rp.created_at, p.id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []rbac.Permission
	for rows.Next() {
		var p rbac.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
