// Package auth implements credential verification, token issuance and
// bearer-token authentication middleware.
package auth

import (
	"context"
	"errors"

	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/shared"
)

// UserFinder is the narrow lookup interface the auth flow needs from the
// user store. The returned user carries its full role/permission graph.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*rbac.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	users  UserFinder
	hasher Hasher
	tokens *TokenManager
}

// NewService constructs a Service.
func NewService(users UserFinder, hasher Hasher, tokens *TokenManager) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// Authenticate validates username/password credentials. Unknown users,
// wrong passwords and inactive accounts all yield the same error so the
// response does not leak which check failed.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*rbac.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user.Username)
}

// Tokens exposes the token manager for the authentication middleware.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}
