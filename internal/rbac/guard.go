package rbac

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/accessd/accessd/internal/platform/httpx"
	"github.com/accessd/accessd/internal/shared"
)

// Actions mapped 1:1 from the HTTP verbs of the CRUD surface.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Guard wires authorization middleware for HTTP handlers. It expects the
// authentication middleware to have placed the caller in the request
// context already.
type Guard struct {
	Logger *slog.Logger
}

// Require ensures the current user holds the resource:action permission.
// The effective set is recomputed from the user's loaded role graph on
// every request; nothing is cached across requests.
func (g Guard) Require(resource, action string) func(http.Handler) http.Handler {
	required := PermissionKey(resource, action)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			if !user.HasPermission(resource, action) {
				if g.Logger != nil {
					g.Logger.Warn("permission denied",
						slog.String("username", user.Username),
						slog.String("required", required))
				}
				httpx.RespondError(w, fmt.Errorf("%w: insufficient permissions, required: %s", shared.ErrForbidden, required))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
