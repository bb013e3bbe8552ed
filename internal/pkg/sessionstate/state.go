// Package sessionstate carries the per-request session snapshot. It replaces
// an ambient session map with an explicit object owned by the request
// pipeline: middleware attaches it, services read and write it through typed
// fields, and logout tears it down with Reset.
package sessionstate

import (
	"github.com/gin-gonic/gin"
	"github.com/stafflink/core/internal/models"
)

const contextKey = "session_state"

// State mirrors the durable session row for the lifetime of one request.
type State struct {
	// Token is the opaque session token resolved from the client cookie.
	Token string

	// Identity fields copied from the durable record on validation.
	UserID   string
	Username string
	Name     string
	Email    string
	RoleID   uint
	RoleName string

	// Permissions is the cached grant list; Loaded distinguishes an empty
	// grant set from a cache that was never populated.
	Permissions       []string
	PermissionsLoaded bool

	// Active dataset selection, persisted back into the session payload.
	DatasetID   string
	DatasetName string

	// Extra holds the caller-supplied key/value snapshot from login.
	Extra map[string]string
}

// From returns the request's session state, attaching a fresh one on first use.
func From(c *gin.Context) *State {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*State); ok {
			return s
		}
	}
	s := &State{}
	c.Set(contextKey, s)
	return s
}

// Peek returns the request's session state without attaching one. Observers
// like the request logger use it so that unauthenticated requests do not
// grow a state object.
func Peek(c *gin.Context) (*State, bool) {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*State); ok {
			return s, true
		}
	}
	return nil, false
}

// Authenticated reports whether identity fields have been populated by a
// successful validation.
func (s *State) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// IsAdmin reports whether the resolved role carries the implicit
// all-permissions bypass.
func (s *State) IsAdmin() bool {
	return s.RoleID == models.AdminRoleID || s.RoleName == models.AdminRoleName
}

// HasCachedPermission is a membership test against the loaded grant list.
// It is only meaningful when PermissionsLoaded is true.
func (s *State) HasCachedPermission(action string) bool {
	for _, p := range s.Permissions {
		if p == action {
			return true
		}
	}
	return false
}

// Reset clears every field, including non-identity keys. Used on logout.
func (s *State) Reset() {
	*s = State{}
}
