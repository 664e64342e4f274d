package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"parsshop-be/internal/user"
	"parsshop-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityEcho(t *testing.T) (http.Handler, *int64, *string) {
	t.Helper()
	var gotID int64
	var gotRole string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = utils.GetUserIDFromContext(r.Context())
		gotRole = utils.GetUserRoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &gotID, &gotRole
}

func TestAuthenticate_ValidBearerToken(t *testing.T) {
	issuer := user.NewTokenIssuer("unit-test-secret")
	token, err := issuer.Generate(user.User{ID: 7, Phone: "09120000000", Role: user.RoleAdmin})
	require.NoError(t, err)

	echo, gotID, gotRole := identityEcho(t)
	handler := Authenticate(issuer)(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, int64(7), *gotID)
	assert.Equal(t, "ADMIN", *gotRole)
}

func TestAuthenticate_CookiePreferred(t *testing.T) {
	issuer := user.NewTokenIssuer("unit-test-secret")
	token, err := issuer.Generate(user.User{ID: 9, Role: user.RoleUser})
	require.NoError(t, err)

	echo, gotID, _ := identityEcho(t)
	handler := Authenticate(issuer)(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, int64(9), *gotID)
}

func TestAuthenticate_BadTokenStaysAnonymous(t *testing.T) {
	issuer := user.NewTokenIssuer("unit-test-secret")

	echo, gotID, _ := identityEcho(t)
	handler := Authenticate(issuer)(echo)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), *gotID)
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), 7, "0912", "USER"))
	rec = httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), 7, "0912", "USER"))
	rec := httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), 1, "0912", "ADMIN"))
	rec = httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit_StrictTierBlocksBursts(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(ok)

	var last int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/payment/callback", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
