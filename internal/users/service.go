package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/accessd/accessd/internal/auth"
	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/rbac"
)

// Replacer swaps a user's attached role set inside the write
// transaction. The PostgreSQL implementation is ReplaceRoles.
type Replacer func(ctx context.Context, db crud.DBTX, userID int64, roleIDs []int64) error

// Service is the user CRUD service plus credential lookup for login.
type Service struct {
	*crud.Service[rbac.User]
}

// NewService builds the user service. The pre hooks swap the plaintext
// password for its bcrypt hash and strip role_ids from the scalar
// write; the post hooks replace the join rows when role_ids was sent.
func NewService(store crud.Store[rbac.User], hasher auth.Hasher, replace Replacer) *Service {
	hashPassword := func(_ context.Context, scalars crud.Fields) error {
		scalars.Pop("role_ids")
		pw, ok := scalars.String("password")
		if !ok {
			return nil
		}
		scalars.Pop("password")
		hash, err := hasher.Hash(pw)
		if err != nil {
			return err
		}
		scalars.Set("password_hash", hash)
		return nil
	}
	sync := func(ctx context.Context, db crud.DBTX, id int64, payload crud.Fields) error {
		ids, ok := payload.Int64s("role_ids")
		if !ok {
			return nil
		}
		return replace(ctx, db, id, ids)
	}
	return &Service{Service: crud.NewService(store, crud.Hooks{
		PreCreate:  hashPassword,
		PreUpdate:  hashPassword,
		PostCreate: sync,
		PostUpdate: sync,
	})}
}

// FindByUsername resolves a user for authentication.
func (s *Service) FindByUsername(ctx context.Context, username string) (*rbac.User, error) {
	return s.GetByField(ctx, "username", username)
}

// NewRouter builds the HTTP router for the users resource.
func NewRouter(
	logger *slog.Logger,
	svc *Service,
	authenticate func(http.Handler) http.Handler,
	guard rbac.Guard,
) *crud.Router[rbac.User, CreateRequest, UpdateRequest] {
	return crud.NewRouter(crud.RouterConfig[rbac.User, CreateRequest, UpdateRequest]{
		Logger:       logger,
		Service:      svc.Service,
		Resource:     Resource,
		Authenticate: authenticate,
		Guard:        guard,
		Present: func(u *rbac.User) any {
			return Present(u)
		},
	})
}
