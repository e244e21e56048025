package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuardRequireNoUser(t *testing.T) {
	handler := Guard{}.Require("users", ActionRead)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/users/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardRequireDenied(t *testing.T) {
	handler := Guard{}.Require("users", ActionCreate)(okHandler())

	user := &User{Username: "bob", Roles: []Role{
		{Name: "viewer", Permissions: []Permission{{Resource: "users", Action: "read"}}},
	}}
	req := httptest.NewRequest("POST", "/users/", nil)
	req = req.WithContext(ContextWithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "users:create")
}

func TestGuardRequireGranted(t *testing.T) {
	handler := Guard{}.Require("users", ActionRead)(okHandler())

	user := &User{Username: "bob", Roles: []Role{
		{Name: "viewer", Permissions: []Permission{{Resource: "users", Action: "read"}}},
	}}
	req := httptest.NewRequest("GET", "/users/", nil)
	req = req.WithContext(ContextWithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
