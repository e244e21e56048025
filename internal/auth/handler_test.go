package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/accessd/accessd/internal/auth"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/shared"
)

type stubFinder struct {
	user *rbac.User
}

func (s *stubFinder) FindByUsername(ctx context.Context, username string) (*rbac.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func newService(t *testing.T, finder auth.UserFinder) *auth.Service {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)
	return auth.NewService(finder, auth.NewHasher(bcrypt.MinCost), tokens)
}

func testUser(t *testing.T, username, password string, active bool) *rbac.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &rbac.User{ID: 1, Username: username, Email: username + "@test.local", PasswordHash: string(hashed), IsActive: active}
}

func postLogin(t *testing.T, h *auth.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Route("/auth", h.MountRoutes)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	svc := newService(t, &stubFinder{user: testUser(t, "admin", "admin123", true)})
	handler := auth.NewHandler(nil, svc)

	rec := postLogin(t, handler, `{"username":"admin","password":"admin123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bearer", body["token_type"])

	subject, err := svc.Tokens().Verify(body["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newService(t, &stubFinder{user: testUser(t, "admin", "admin123", true)})
	handler := auth.NewHandler(nil, svc)

	rec := postLogin(t, handler, `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "incorrect username or password")
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newService(t, &stubFinder{})
	handler := auth.NewHandler(nil, svc)

	rec := postLogin(t, handler, `{"username":"ghost","password":"whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginInactiveUser(t *testing.T) {
	svc := newService(t, &stubFinder{user: testUser(t, "admin", "admin123", false)})
	handler := auth.NewHandler(nil, svc)

	// Inactive accounts fail credential verification with the same
	// message as a bad password.
	rec := postLogin(t, handler, `{"username":"admin","password":"admin123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMalformedBody(t *testing.T) {
	svc := newService(t, &stubFinder{})
	handler := auth.NewHandler(nil, svc)

	rec := postLogin(t, handler, `{"username":`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = postLogin(t, handler, `{"username":"admin"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
