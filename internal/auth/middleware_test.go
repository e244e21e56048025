package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accessd/accessd/internal/auth"
	"github.com/accessd/accessd/internal/rbac"
)

func authedRequest(t *testing.T, tokens *auth.TokenManager, username string) *http.Request {
	t.Helper()
	token, err := tokens.Issue(username)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/users/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthenticateResolvesUser(t *testing.T) {
	user := testUser(t, "admin", "admin123", true)
	tokens, err := auth.NewTokenManager("test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	mw := auth.Middleware{Tokens: tokens, Users: &stubFinder{user: user}}

	var resolved *rbac.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved = rbac.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(rec, authedRequest(t, tokens, "admin"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resolved)
	assert.Equal(t, "admin", resolved.Username)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	tokens, err := auth.NewTokenManager("test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	mw := auth.Middleware{Tokens: tokens, Users: &stubFinder{}}

	rec := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateBadToken(t *testing.T) {
	tokens, err := auth.NewTokenManager("test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	mw := auth.Middleware{Tokens: tokens, Users: &stubFinder{}}

	req := httptest.NewRequest(http.MethodGet, "/users/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateExpiredTokenLooksTheSame(t *testing.T) {
	expired, err := auth.NewTokenManager("test-secret", "HS256", -time.Minute)
	require.NoError(t, err)
	live, err := auth.NewTokenManager("test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	mw := auth.Middleware{Tokens: live, Users: &stubFinder{}}

	rec := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, authedRequest(t, expired, "admin"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(forged, req)

	// Expired and malformed tokens must produce identical responses.
	assert.Equal(t, forged.Code, rec.Code)
	assert.Equal(t, forged.Body.String(), rec.Body.String())
}

func TestAuthenticateTokenForDeletedUser(t *testing.T) {
	tokens, err := auth.NewTokenManager("test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	mw := auth.Middleware{Tokens: tokens, Users: &stubFinder{}}

	rec := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, authedRequest(t, tokens, "ghost"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	user := testUser(t, "admin", "admin123", false)
	tokens, err := auth.NewTokenManager("test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	mw := auth.Middleware{Tokens: tokens, Users: &stubFinder{user: user}}

	rec := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, authedRequest(t, tokens, "admin"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "inactive user")
}
