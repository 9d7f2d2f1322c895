package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"booteh.app/web/internal/auth"
	"booteh.app/web/internal/observability"
)

// Authenticate resolves the visitor's auth session once per request so that
// navigation can reflect it on every page.
func Authenticate(provider auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if provider == nil || auth.FromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}
			sess := provider.Current(r)
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

// RequireSession renders nested routes only for sessions granting capability;
// everyone else is sent to loginPath.
func RequireSession(provider auth.Provider, capability auth.Capability, loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := auth.FromContext(r.Context())
			if sess == nil && provider != nil {
				sess = provider.Current(r)
			}
			if !sess.Has(capability) {
				observability.FromContext(r.Context()).Info("guard redirect",
					zap.String("capability", string(capability)),
					zap.Bool("authenticated", sess.Authenticated()),
				)
				handleUnauthorized(w, r, loginPath)
				return
			}
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", loginPath)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusFound)
}
