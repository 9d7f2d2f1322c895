package backend

import (
	"context"
	"strings"
)

type ctxKey int

const (
	localeKey ctxKey = iota
	tokenKey
)

// WithLocale attaches the language sent as Accept-Language on backend calls.
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, localeKey, strings.TrimSpace(lang))
}

// LocaleFrom returns the language attached by WithLocale.
func LocaleFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(localeKey).(string)
	return v
}

// WithToken attaches the bearer token forwarded on backend calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, strings.TrimSpace(token))
}

func tokenFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(tokenKey).(string)
	return v
}
