package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtpkg "github.com/stafflink/core/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bearerRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		id := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "user_id": id.UserID})
	})
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func signedToken(t *testing.T) string {
	t.Helper()
	jwtpkg.SetSecret("middleware-test-secret")
	signed, err := jwtpkg.Sign(jwtpkg.Identity{UserID: "u-1", RoleID: 2})
	require.NoError(t, err)
	return signed
}

func TestRequireAuthMissingToken(t *testing.T) {
	r := bearerRouter(RequireAuth())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unauthorized access", body["message"])
}

func TestRequireAuthHeader(t *testing.T) {
	token := signedToken(t)
	r := bearerRouter(RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", decodeBody(t, w)["user_id"])
}

func TestRequireAuthCookieFallback(t *testing.T) {
	token := signedToken(t)
	r := bearerRouter(RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "jwt_token", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// A present-but-invalid header is not rescued by a valid cookie: the header
// takes precedence whenever it is set.
func TestRequireAuthHeaderPrecedence(t *testing.T) {
	token := signedToken(t)
	r := bearerRouter(RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tampered")
	req.AddCookie(&http.Cookie{Name: "jwt_token", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	token := signedToken(t) // role 2

	allowed := bearerRouter(RequireRole(2, 3))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	allowed.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	denied := bearerRouter(RequireRole(1))
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	denied.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Permission denied", decodeBody(t, w)["message"])
}

// A role mismatch must deny before the endpoint runs: the protected handler
// may not execute and its payload may not leak into the response.
func TestRequireRoleDenialShortCircuits(t *testing.T) {
	token := signedToken(t) // role 2

	handlerRan := false
	r := gin.New()
	r.GET("/admin", RequireRole(1), func(c *gin.Context) {
		handlerRan = true
		c.JSON(http.StatusOK, gin.H{"success": true, "data": "session dump"})
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.False(t, handlerRan)
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Permission denied", body["message"])
	assert.NotContains(t, w.Body.String(), "session dump")
}

func TestRequireRoleWithoutToken(t *testing.T) {
	r := bearerRouter(RequireRole(1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPICorsPreflight(t *testing.T) {
	r := gin.New()
	r.Use(APICors())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, w.Body.String())
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  abc "))
	assert.Equal(t, "abc", NormalizeToken("Bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("bearer abc"))
	assert.Equal(t, "", NormalizeToken("  "))
}
