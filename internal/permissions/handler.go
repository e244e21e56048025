package permissions

import (
	"log/slog"
	"net/http"

	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/rbac"
)

// NewRouter builds the HTTP router for the permissions resource.
func NewRouter(
	logger *slog.Logger,
	svc *crud.Service[rbac.Permission],
	authenticate func(http.Handler) http.Handler,
	guard rbac.Guard,
) *crud.Router[rbac.Permission, CreateRequest, UpdateRequest] {
	return crud.NewRouter(crud.RouterConfig[rbac.Permission, CreateRequest, UpdateRequest]{
		Logger:       logger,
		Service:      svc,
		Resource:     Resource,
		Authenticate: authenticate,
		Guard:        guard,
		Present: func(p *rbac.Permission) any {
			return Present(p)
		},
	})
}

// NewService builds the permission service. Permissions carry no
// relationship payloads, so no hooks are installed.
func NewService(store crud.Store[rbac.Permission]) *crud.Service[rbac.Permission] {
	return crud.NewService(store, crud.Hooks{})
}
