package auth

import (
	"net/http"
	"strings"
)

// Cookie names written by the login handlers.
const (
	UserFlagCookie  = "isLoggedIn"
	AdminFlagCookie = "isAdminLoggedIn"
	TokenCookie     = "authToken"
)

// FlagProvider treats any non-empty login flag cookie as authenticated.
// Flags are not validated, refreshed or expired.
type FlagProvider struct{}

// Current implements Provider.
func (FlagProvider) Current(r *http.Request) *Session {
	if r == nil {
		return nil
	}
	var sess *Session
	switch {
	case flagSet(r, AdminFlagCookie):
		sess = &Session{Role: RoleAdmin}
	case flagSet(r, UserFlagCookie):
		sess = &Session{Role: RoleUser}
	default:
		return nil
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		sess.Token = strings.TrimSpace(c.Value)
	}
	return sess
}

func flagSet(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	return err == nil && strings.TrimSpace(c.Value) != ""
}
