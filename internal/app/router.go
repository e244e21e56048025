package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accessd/accessd/internal/auth"
	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/observability"
	"github.com/accessd/accessd/internal/permissions"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/roles"
	"github.com/accessd/accessd/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthHandler       *auth.Handler
	UsersRouter       *crud.Router[rbac.User, users.CreateRequest, users.UpdateRequest]
	RolesRouter       *crud.Router[rbac.Role, roles.CreateRequest, roles.UpdateRequest]
	PermissionsRouter *crud.Router[rbac.Permission, permissions.CreateRequest, permissions.UpdateRequest]
	Pool              *pgxpool.Pool
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with the service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/"+users.Resource, params.UsersRouter.MountRoutes)
	r.Route("/"+roles.Resource, params.RolesRouter.MountRoutes)
	r.Route("/"+permissions.Resource, params.PermissionsRouter.MountRoutes)

	return r
}
