package middleware

import (
	"github.com/gin-gonic/gin"
	sessionmod "github.com/stafflink/core/internal/modules/auth/session"
	"github.com/stafflink/core/internal/pkg/response"
	"github.com/stafflink/core/internal/pkg/sessionstate"
)

// WithSession attaches the request session state and seeds it with the
// session cookie if one is present. It never blocks the request.
func WithSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := sessionstate.From(c)
		if raw, err := c.Cookie(sessionmod.CookieName); err == nil {
			st.Token = raw
		}
		c.Next()
	}
}

// RequireSession validates the cookie session and populates identity on the
// state. The AJAX surface answers auth failures with HTTP 200 and
// success:false.
func RequireSession(svc *sessionmod.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := sessionstate.From(c)
		if st.Token == "" {
			if raw, err := c.Cookie(sessionmod.CookieName); err == nil {
				st.Token = raw
			}
		}
		if !svc.Validate(st) {
			response.Fail(c, response.MsgNotAuthenticated)
			return
		}
		c.Next()
	}
}
