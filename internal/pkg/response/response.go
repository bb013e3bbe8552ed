package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every endpoint answers the same envelope: {"success": bool, "message"?: "...", ...payload}.
// The AJAX (cookie) surface reports auth failures with HTTP 200 and
// success:false in the body; the bearer API surface uses 401/403 statuses.

const (
	MsgUnauthorized     = "Unauthorized access"
	MsgNotAuthenticated = "Not authenticated"
	MsgPermissionDenied = "Permission denied"
)

// OK sends a 200 success envelope merged with the given payload.
func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// OKMessage sends a 200 success envelope with only a message.
func OKMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// Fail sends a 200 response with success:false. Used by the AJAX surface,
// which reserves non-2xx statuses for transport-level problems.
func Fail(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusOK, gin.H{"success": false, "message": message})
}

// BadRequest sends a 400 error envelope.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// Unauthorized sends a 401 error envelope (bearer API surface).
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": MsgUnauthorized})
}

// Forbidden sends a 403 error envelope (bearer API surface).
func Forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": MsgPermissionDenied})
}

// NotFound sends a 404 error envelope.
func NotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "message": message})
}

// TooManyRequests sends a 429 error envelope.
func TooManyRequests(c *gin.Context, message string) {
	c.Header("Retry-After", "1")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": message})
}

// Conflict sends a 409 error envelope.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{"success": false, "message": message})
}

// InternalError sends a 500 error envelope.
func InternalError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
}
