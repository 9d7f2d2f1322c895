package middleware

import (
	"context"

	"booteh.app/web/internal/i18n"
	"booteh.app/web/internal/session"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyHTMX    ctxKey = "htmx.info"
	ctxKeySession ctxKey = "session"
	ctxKeyLocale  ctxKey = "locale"
	ctxKeyCSRF    ctxKey = "csrf.token"
)

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(ctxKeySession).(*session.Session)
	return sess, ok && sess != nil
}

// WithLocale stores the resolved locale on the context.
func WithLocale(ctx context.Context, loc i18n.Locale) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, loc)
}

// LocaleFromContext returns the resolved locale, defaulting to Arabic.
func LocaleFromContext(ctx context.Context) i18n.Locale {
	if ctx != nil {
		if loc, ok := ctx.Value(ctxKeyLocale).(i18n.Locale); ok && loc.Lang != "" {
			return loc
		}
	}
	return i18n.Locale{Lang: "ar", Dir: i18n.RTL}
}

// CSRFTokenFromContext returns the token issued for the current request.
func CSRFTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(ctxKeyCSRF).(string)
	return token
}
