// Package flash stores one-shot user-visible messages for redirect flows.
// A message survives exactly one read: permission middleware sets it before
// redirecting, the next page load drains it.
package flash

import (
	"context"
	"fmt"
	"time"

	pkgredis "github.com/stafflink/core/internal/pkg/redis"
)

const ttl = 5 * time.Minute

type Store struct {
	rc *pkgredis.Client
}

func New(rc *pkgredis.Client) *Store { return &Store{rc: rc} }

func key(sessionToken string) string {
	return fmt.Sprintf("sl:flash:%s", sessionToken)
}

// Set records a message for the session. Errors are swallowed; losing a
// flash message is preferable to failing the redirect.
func (s *Store) Set(ctx context.Context, sessionToken, message string) {
	if sessionToken == "" || message == "" {
		return
	}
	_ = s.rc.Set(ctx, key(sessionToken), message, ttl)
}

// Take returns the pending message and clears it, or "" when none is set.
func (s *Store) Take(ctx context.Context, sessionToken string) string {
	if sessionToken == "" {
		return ""
	}
	msg, err := s.rc.GetDel(ctx, key(sessionToken))
	if err != nil {
		return ""
	}
	return msg
}
