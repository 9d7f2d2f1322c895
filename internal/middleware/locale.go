package middleware

import (
	"net/http"
	"strings"
	"time"

	"booteh.app/web/internal/i18n"
)

// LocaleCookie persists the visitor's language choice outside the session.
const LocaleCookie = "hl"

// LocaleConfig tunes locale resolution.
type LocaleConfig struct {
	// AcceptLanguage lets the browser header pick the locale when nothing is stored.
	AcceptLanguage bool
	Secure         bool
}

// Locale resolves the request locale once: ?hl= override, then session,
// then the hl cookie, then (optionally) Accept-Language, then the bundle fallback.
// An override is persisted to the session and the hl cookie.
func Locale(bundle *i18n.Bundle, cfg LocaleConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, hasSession := SessionFromContext(r.Context())
			lang := ""

			if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("hl"))); q != "" && bundle.IsSupported(q) {
				lang = q
				if hasSession {
					sess.SetLocale(lang)
				}
				http.SetCookie(w, &http.Cookie{
					Name:     LocaleCookie,
					Value:    lang,
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			if lang == "" && hasSession && bundle.IsSupported(sess.Locale()) {
				lang = sess.Locale()
			}
			if lang == "" {
				if c, err := r.Cookie(LocaleCookie); err == nil && bundle.IsSupported(c.Value) {
					lang = strings.ToLower(strings.TrimSpace(c.Value))
				}
			}
			if lang == "" && cfg.AcceptLanguage {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}

			loc := bundle.Locale(lang)
			w.Header().Set("Content-Language", loc.Lang)
			next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), loc)))
		})
	}
}

// VaryLocale sets the Vary header for locale-dependent responses.
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		w.Header().Add("Vary", "Cookie")
		next.ServeHTTP(w, r)
	})
}
