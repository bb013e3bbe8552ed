package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stafflink/core/internal/modules/auth/permission"
	"github.com/stafflink/core/internal/pkg/flash"
	"github.com/stafflink/core/internal/pkg/response"
	"github.com/stafflink/core/internal/pkg/sessionstate"
)

// RequirePermission authorizes the action for the current session principal.
// Runs after RequireSession; denial answers the AJAX envelope.
func RequirePermission(oracle *permission.Service, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := sessionstate.From(c)
		if !oracle.Has(st, action) {
			response.Fail(c, response.MsgPermissionDenied)
			return
		}
		c.Next()
	}
}

// RequirePermissionPage is the page-flow variant: on denial it records a
// one-shot message and redirects instead of answering JSON.
func RequirePermissionPage(oracle *permission.Service, fl *flash.Store, action, redirectTarget string) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := sessionstate.From(c)
		if !oracle.Has(st, action) {
			fl.Set(c.Request.Context(), st.Token, response.MsgPermissionDenied)
			c.Redirect(http.StatusSeeOther, redirectTarget)
			c.Abort()
			return
		}
		c.Next()
	}
}
