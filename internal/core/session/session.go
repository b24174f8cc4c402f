// Package session carries the authenticated caller through a request.
//
// A Session is built once by the auth middleware after the bearer token is
// verified and is read by handlers and services through the request context.
// Its lifetime is the request: sign-out on the client simply stops sending the
// token, and an expired token never produces a Session.
package session

import (
	"context"
	"time"
)

// Session is the authenticated caller of a request
type Session struct {
	UserID      string
	Email       string
	Role        string
	AccessToken string
	ExpiresAt   time.Time
}

// IsAuthenticated reports whether the session belongs to a signed-in user
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != ""
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// UserID returns the authenticated user ID from ctx, or "" for anonymous callers
func UserID(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.UserID
	}
	return ""
}
