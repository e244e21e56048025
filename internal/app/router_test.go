package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accessd/accessd/internal/app"
	"github.com/accessd/accessd/internal/auth"
	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/crud/crudtest"
	"github.com/accessd/accessd/internal/observability"
	"github.com/accessd/accessd/internal/permissions"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/roles"
	"github.com/accessd/accessd/internal/shared"
	"github.com/accessd/accessd/internal/users"
)

// env wires the full HTTP surface over in-memory stores, standing in
// for the PostgreSQL layer.
type env struct {
	handler    http.Handler
	userStore  *crudtest.MemStore[rbac.User]
	roleStore  *crudtest.MemStore[rbac.Role]
	permStore  *crudtest.MemStore[rbac.Permission]
	adminToken string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	hasher := auth.NewHasher(4)
	tokens, err := auth.NewTokenManager("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	permStore := crudtest.NewMemStore[rbac.Permission]()
	permStore.New = func() *rbac.Permission { return &rbac.Permission{CreatedAt: time.Now()} }
	permStore.Apply = func(p *rbac.Permission, f crud.Fields) error {
		if v, ok := f.String("name"); ok {
			p.Name = v
		}
		if v, ok := f.String("description"); ok {
			p.Description = v
		}
		if v, ok := f.String("resource"); ok {
			p.Resource = v
		}
		if v, ok := f.String("action"); ok {
			p.Action = v
		}
		return nil
	}
	permStore.SetID = func(p *rbac.Permission, id int64) { p.ID = id }
	permStore.GetID = func(p *rbac.Permission) int64 { return p.ID }
	permStore.Field = func(p *rbac.Permission, name string) any { return nil }
	permStore.Unique = func(existing, candidate *rbac.Permission) error {
		if existing.Name == candidate.Name {
			return fmt.Errorf("%w: duplicate key value violates unique constraint \"permissions_name_key\"", shared.ErrConflict)
		}
		return nil
	}

	roleStore := crudtest.NewMemStore[rbac.Role]()
	roleStore.New = func() *rbac.Role { return &rbac.Role{CreatedAt: time.Now()} }
	roleStore.Apply = func(r *rbac.Role, f crud.Fields) error {
		if v, ok := f.String("name"); ok {
			r.Name = v
		}
		if v, ok := f.String("description"); ok {
			r.Description = v
		}
		return nil
	}
	roleStore.SetID = func(r *rbac.Role, id int64) { r.ID = id }
	roleStore.GetID = func(r *rbac.Role) int64 { return r.ID }
	roleStore.Field = func(r *rbac.Role, name string) any { return nil }
	roleStore.Unique = func(existing, candidate *rbac.Role) error {
		if existing.Name == candidate.Name {
			return fmt.Errorf("%w: duplicate key value violates unique constraint \"roles_name_key\"", shared.ErrConflict)
		}
		return nil
	}

	userStore := crudtest.NewMemStore[rbac.User]()
	userStore.New = func() *rbac.User { return &rbac.User{IsActive: true, CreatedAt: time.Now()} }
	userStore.Apply = func(u *rbac.User, f crud.Fields) error {
		if v, ok := f.String("username"); ok {
			u.Username = v
		}
		if v, ok := f.String("email"); ok {
			u.Email = v
		}
		if v, ok := f.String("password_hash"); ok {
			u.PasswordHash = v
		}
		if v, ok := f.Get("is_active"); ok {
			u.IsActive = v.(bool)
		}
		return nil
	}
	userStore.SetID = func(u *rbac.User, id int64) { u.ID = id }
	userStore.GetID = func(u *rbac.User) int64 { return u.ID }
	userStore.Field = func(u *rbac.User, name string) any {
		if name == "username" {
			return u.Username
		}
		return nil
	}
	userStore.Unique = func(existing, candidate *rbac.User) error {
		if existing.Username == candidate.Username {
			return fmt.Errorf("%w: duplicate key value violates unique constraint \"users_username_key\"", shared.ErrConflict)
		}
		return nil
	}

	replacePerms := func(ctx context.Context, _ crud.DBTX, roleID int64, ids []int64) error {
		role, err := roleStore.Get(ctx, roleID)
		if err != nil {
			return err
		}
		role.Permissions = nil
		for _, id := range ids {
			if p, err := permStore.Get(ctx, id); err == nil {
				role.Permissions = append(role.Permissions, *p)
			}
		}
		return nil
	}
	replaceRoles := func(ctx context.Context, _ crud.DBTX, userID int64, ids []int64) error {
		user, err := userStore.Get(ctx, userID)
		if err != nil {
			return err
		}
		user.Roles = nil
		for _, id := range ids {
			if r, err := roleStore.Get(ctx, id); err == nil {
				user.Roles = append(user.Roles, *r)
			}
		}
		return nil
	}

	usersSvc := users.NewService(userStore, hasher, replaceRoles)
	rolesSvc := roles.NewService(roleStore, replacePerms)
	permsSvc := permissions.NewService(permStore)

	authSvc := auth.NewService(usersSvc, hasher, tokens)
	authMW := auth.Middleware{Logger: logger, Tokens: tokens, Users: usersSvc}
	guard := rbac.Guard{Logger: logger}

	handler := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            &app.Config{AppEnv: "development", AppRequestTimeout: 30 * time.Second},
		AuthHandler:       auth.NewHandler(logger, authSvc),
		UsersRouter:       users.NewRouter(logger, usersSvc, authMW.Authenticate, guard),
		RolesRouter:       roles.NewRouter(logger, rolesSvc, authMW.Authenticate, guard),
		PermissionsRouter: permissions.NewRouter(logger, permsSvc, authMW.Authenticate, guard),
		Metrics:           observability.NewMetrics(),
	})

	// seed an administrator with full access the way the seeder does
	ctx := context.Background()
	var adminPerms []rbac.Permission
	for _, res := range []string{"users", "roles", "permissions"} {
		for _, act := range []string{"create", "read", "update", "delete"} {
			p := &rbac.Permission{Name: fmt.Sprintf("%s %s", act, res), Resource: res, Action: act, CreatedAt: time.Now()}
			permStore.Seed(p)
			adminPerms = append(adminPerms, *p)
		}
	}
	adminRole := &rbac.Role{Name: "admin", Permissions: adminPerms, CreatedAt: time.Now()}
	roleStore.Seed(adminRole)
	hash, err := hasher.Hash("admin123")
	require.NoError(t, err)
	userStore.Seed(&rbac.User{
		Username: "admin", Email: "admin@example.com", PasswordHash: hash,
		IsActive: true, Roles: []rbac.Role{*adminRole}, CreatedAt: time.Now(),
	})

	e := &env{handler: handler, userStore: userStore, roleStore: roleStore, permStore: permStore}
	e.adminToken, err = authSvc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	return e
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLoginAndAuthorizedFlow(t *testing.T) {
	e := newEnv(t)

	// a read-only permission, a viewer role carrying it, and a user
	rec := e.do(t, http.MethodPost, "/permissions/", e.adminToken, map[string]any{
		"name": "View Users", "resource": "users", "action": "read",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var perm permissions.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &perm))

	rec = e.do(t, http.MethodPost, "/roles/", e.adminToken, map[string]any{
		"name": "viewer", "permission_ids": []int64{perm.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var role roles.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &role))
	require.Len(t, role.Permissions, 1)

	rec = e.do(t, http.MethodPost, "/users/", e.adminToken, map[string]any{
		"username": "bob", "email": "bob@example.com", "password": "x",
		"role_ids": []int64{role.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var bob users.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bob))
	require.Len(t, bob.Roles, 1)

	rec = e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"username": "bob", "password": "x",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.Equal(t, "bearer", tok.TokenType)
	require.NotEmpty(t, tok.AccessToken)

	// bob can read users but not create them
	rec = e.do(t, http.MethodGet, "/users/", tok.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/users/", tok.AccessToken, map[string]any{
		"username": "eve", "email": "eve@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/users/", "/roles/", "/permissions/"} {
		rec := e.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestDeleteMissingUser(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodDelete, "/users/999", e.adminToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User not found", body.Detail)
}

func TestPermissionChangesVisibleWithoutRelogin(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/users/", e.adminToken, map[string]any{
		"username": "carol", "email": "carol@example.com", "password": "x",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var carol users.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &carol))

	rec = e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"username": "carol", "password": "x",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))

	// no roles yet
	rec = e.do(t, http.MethodGet, "/users/", tok.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// grant the admin role and retry with the same token
	adminRoleID := int64(1)
	rec = e.do(t, http.MethodPut, fmt.Sprintf("/users/%d", carol.ID), e.adminToken, map[string]any{
		"role_ids": []int64{adminRoleID},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/users/", tok.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accessd_http_requests_total")
}
