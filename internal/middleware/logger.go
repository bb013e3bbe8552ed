package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	jwtpkg "github.com/stafflink/core/internal/pkg/jwt"
	"github.com/stafflink/core/internal/pkg/sessionstate"
)

// Logger logs each request, tagged with the principal the auth middlewares
// resolved: the cookie-session identity when one validated, otherwise the
// bearer identity.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if uid := principal(c); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		log.Info("request", fields...)
	}
}

func principal(c *gin.Context) string {
	if st, ok := sessionstate.Peek(c); ok && st.Authenticated() {
		return st.UserID
	}
	if v, ok := c.Get(contextKeyIdentity); ok {
		if id, ok := v.(*jwtpkg.Identity); ok {
			return id.UserID
		}
	}
	return ""
}
