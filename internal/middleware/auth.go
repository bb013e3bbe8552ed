package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwtpkg "github.com/stafflink/core/internal/pkg/jwt"
	"github.com/stafflink/core/internal/pkg/response"
)

const (
	contextKeyIdentity = "bearer_identity"

	// jwtCookieName duplicates token.JWTCookieName; the middleware package
	// sits below the modules and cannot import them.
	jwtCookieName = "jwt_token"
)

// resolveIdentity verifies the bearer credential and stashes the identity on
// the context. Both guards below share it so that each middleware frame calls
// c.Next at most once.
func resolveIdentity(c *gin.Context) (*jwtpkg.Identity, error) {
	claims, err := jwtpkg.Parse(extractBearer(c))
	if err != nil {
		return nil, err
	}
	c.Set(contextKeyIdentity, &claims.Identity)
	return &claims.Identity, nil
}

// RequireAuth enforces bearer credential authentication. The Authorization
// header wins; the jwt_token cookie is the fallback. Failure short-circuits
// with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolveIdentity(c); err != nil {
			response.Unauthorized(c)
			return
		}
		c.Next()
	}
}

// RequireRole enforces bearer auth plus membership in one of the given role
// ids. Mismatch short-circuits with 403 before any downstream handler runs.
func RequireRole(roleIDs ...uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolveIdentity(c)
		if err != nil {
			response.Unauthorized(c)
			return
		}
		for _, rid := range roleIDs {
			if id.RoleID == rid {
				c.Next()
				return
			}
		}
		response.Forbidden(c)
	}
}

// CurrentIdentity returns the bearer identity resolved by RequireAuth, or
// nil when the request was not bearer-authenticated.
func CurrentIdentity(c *gin.Context) *jwtpkg.Identity {
	v, _ := c.Get(contextKeyIdentity)
	id, _ := v.(*jwtpkg.Identity)
	return id
}

// APICors answers the permissive CORS contract of the bearer surface:
// any origin, GET and OPTIONS only, preflight answered with a bare 200.
func APICors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	if token := NormalizeToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if raw, err := c.Cookie(jwtCookieName); err == nil {
		return NormalizeToken(raw)
	}
	return ""
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
