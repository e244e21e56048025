package roles

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/rbac"
)

// Replacer swaps a role's attached permission set inside the write
// transaction. The PostgreSQL implementation is ReplacePermissions.
type Replacer func(ctx context.Context, db crud.DBTX, roleID int64, permissionIDs []int64) error

// NewService builds the role service. The hooks strip permission_ids
// from the scalar write and replace the join rows afterwards, so a
// present but empty list clears the set and an absent key changes
// nothing.
func NewService(store crud.Store[rbac.Role], replace Replacer) *crud.Service[rbac.Role] {
	sync := func(ctx context.Context, db crud.DBTX, id int64, payload crud.Fields) error {
		ids, ok := payload.Int64s("permission_ids")
		if !ok {
			return nil
		}
		return replace(ctx, db, id, ids)
	}
	return crud.NewService(store, crud.Hooks{
		PreCreate: func(_ context.Context, scalars crud.Fields) error {
			scalars.Pop("permission_ids")
			return nil
		},
		PreUpdate: func(_ context.Context, scalars crud.Fields) error {
			scalars.Pop("permission_ids")
			return nil
		},
		PostCreate: sync,
		PostUpdate: sync,
	})
}

// NewRouter builds the HTTP router for the roles resource.
func NewRouter(
	logger *slog.Logger,
	svc *crud.Service[rbac.Role],
	authenticate func(http.Handler) http.Handler,
	guard rbac.Guard,
) *crud.Router[rbac.Role, CreateRequest, UpdateRequest] {
	return crud.NewRouter(crud.RouterConfig[rbac.Role, CreateRequest, UpdateRequest]{
		Logger:       logger,
		Service:      svc,
		Resource:     Resource,
		Authenticate: authenticate,
		Guard:        guard,
		Present: func(r *rbac.Role) any {
			return Present(r)
		},
	})
}
