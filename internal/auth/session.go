// Package auth exposes the visitor's authentication state to handlers and guards.
package auth

import (
	"context"
	"net/http"
)

// Session is the authentication state derived for one request.
type Session struct {
	UserID         int64
	Username       string
	Role           Role
	OrganizationID int64
	// Token is the backend credential forwarded on API calls, when known.
	Token string
}

// Authenticated reports whether the session represents a signed-in visitor.
func (s *Session) Authenticated() bool {
	return s != nil && s.Role != ""
}

// Has reports whether the session grants capability.
func (s *Session) Has(capability Capability) bool {
	if !s.Authenticated() {
		return false
	}
	return Allows(s.Role, capability)
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.Authenticated() && s.Role == RoleAdmin
}

// Provider derives the current session from a request. It returns nil for anonymous visitors.
type Provider interface {
	Current(r *http.Request) *Session
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(*http.Request) *Session

// Current implements Provider.
func (f ProviderFunc) Current(r *http.Request) *Session {
	if f == nil {
		return nil
	}
	return f(r)
}

type sessionKey struct{}

// WithSession stores the session on the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
