package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"booteh.app/web/internal/auth"
	"booteh.app/web/internal/backend"
	mw "booteh.app/web/internal/middleware"
	"booteh.app/web/internal/observability"
)

const authCookieMaxAge = 7 * 24 * time.Hour

// loginView backs both the user and the admin login form.
type loginView struct {
	Admin    bool
	Action   string
	Username string
	ErrorKey string
}

func (a *app) loginForm(admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.renderLogin(w, r, http.StatusOK, loginView{Admin: admin, Action: loginAction(admin)})
	}
}

func (a *app) renderLogin(w http.ResponseWriter, r *http.Request, status int, view loginView) {
	titleKey := "login.title"
	if view.Admin {
		titleKey = "login.admin_title"
	}
	vm := a.page(r, titleKey, "")
	vm.SEO.Robots = "noindex"
	vm.Content = view
	a.render.Page(w, r, status, "login", vm)
}

// loginSubmit forwards the credentials to the backend. On success it stores
// the issued token and the login flag the guards read, then redirects.
func (a *app) loginSubmit(admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := backend.Credentials{
			Username: strings.TrimSpace(r.PostFormValue("username")),
			Password: r.PostFormValue("password"),
		}
		view := loginView{Admin: admin, Action: loginAction(admin), Username: creds.Username}
		if creds.Username == "" || creds.Password == "" {
			view.ErrorKey = "login.missing"
			a.renderLogin(w, r, http.StatusUnprocessableEntity, view)
			return
		}

		login := a.cfg.Backend.Login
		if admin {
			login = a.cfg.Backend.AdminLogin
		}
		res, err := login(r.Context(), creds)
		if err != nil {
			logLoginFailure(r.Context(), admin, err)
			view.ErrorKey = "login.failed"
			status := http.StatusBadGateway
			var se *backend.StatusError
			if errors.As(err, &se) && se.Status < http.StatusInternalServerError {
				status = http.StatusUnauthorized
			}
			a.renderLogin(w, r, status, view)
			return
		}

		flag, target := auth.UserFlagCookie, "/dashboard"
		if admin {
			flag, target = auth.AdminFlagCookie, "/admin"
		}
		a.setAuthCookie(w, flag, "true", false)
		if res.Token != "" {
			a.setAuthCookie(w, auth.TokenCookie, res.Token, true)
		}
		if sess, ok := mw.SessionFromContext(r.Context()); ok {
			sess.Rotate()
			sess.SetFlash("success", "flash.logged_in")
		}
		redirect(w, r, target)
	}
}

func (a *app) logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{auth.UserFlagCookie, auth.AdminFlagCookie, auth.TokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: name == auth.TokenCookie,
			Secure:   a.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		sess.Rotate()
		sess.SetFlash("info", "flash.logged_out")
	}
	redirect(w, r, "/")
}

func (a *app) setAuthCookie(w http.ResponseWriter, name, value string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(authCookieMaxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func loginAction(admin bool) string {
	if admin {
		return AdminLoginPath
	}
	return LoginPath
}

func logLoginFailure(ctx context.Context, admin bool, err error) {
	observability.FromContext(ctx).Warn("login failed", zap.Bool("admin", admin), zap.Error(err))
}

// redirect answers htmx requests with HX-Redirect and everyone else with 303.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
