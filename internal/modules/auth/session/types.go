package session

import (
	"errors"
	"time"
)

const (
	// CookieName is the client-visible session cookie.
	CookieName = "session_token"

	// AbsoluteTTL is the hard session lifetime from creation.
	AbsoluteTTL = 30 * 24 * time.Hour

	// InactivityCeiling invalidates a session once this much time passes
	// without a validated request.
	InactivityCeiling = 12 * time.Hour

	// tokenBytes gives 256 bits of entropy per token.
	tokenBytes = 32
)

// ClientMeta captures the request fingerprint persisted with a session.
type ClientMeta struct {
	PublicIP    string
	LocalIP     string
	BrowserInfo string
}

type LoginDTO struct {
	Username string            `json:"username" binding:"required"`
	Password string            `json:"password" binding:"required"`
	Extra    map[string]string `json:"extra"`
}

type LogoutDTO struct {
	Token string `json:"token"`
}

var (
	errUserNotFound  = errors.New("auth user not found")
	errUserInactive  = errors.New("auth user inactive")
	errWrongPassword = errors.New("auth wrong password")
)
