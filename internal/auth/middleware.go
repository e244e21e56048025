package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/accessd/accessd/internal/platform/httpx"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/shared"
)

// Middleware authenticates requests from the Authorization header and
// places the resolved user in the request context. The user is re-read
// from the store on every request so role and permission changes made
// mid-session are visible immediately.
type Middleware struct {
	Logger *slog.Logger
	Tokens *TokenManager
	Users  UserFinder
}

// Authenticate verifies the bearer token and resolves the caller.
// Missing, malformed and expired tokens are indistinguishable to the
// client: all yield the same 401.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, fmt.Errorf("%w: not authenticated", shared.ErrUnauthorized))
			return
		}

		username, err := m.Tokens.Verify(token)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: could not validate credentials", shared.ErrUnauthorized))
			return
		}

		user, err := m.Users.FindByUsername(r.Context(), username)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: user not found", shared.ErrUnauthorized))
			return
		}
		if !user.IsActive {
			httpx.RespondError(w, fmt.Errorf("%w: inactive user", shared.ErrInactiveUser))
			return
		}

		ctx := rbac.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
