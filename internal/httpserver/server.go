// Package httpserver assembles the router, middleware stack and page handlers.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"booteh.app/web/internal/auth"
	"booteh.app/web/internal/backend"
	"booteh.app/web/internal/background"
	"booteh.app/web/internal/cms"
	"booteh.app/web/internal/handlers"
	"booteh.app/web/internal/i18n"
	"booteh.app/web/internal/metrics"
	mw "booteh.app/web/internal/middleware"
	"booteh.app/web/internal/observability"
	"booteh.app/web/internal/sections"
	"booteh.app/web/internal/session"
	"booteh.app/web/internal/status"
)

// Paths the guards redirect to.
const (
	LoginPath      = "/login"
	AdminLoginPath = "/admin/login"
)

// Backend is the API surface the pages consume. *backend.Client satisfies it.
type Backend interface {
	sections.Source
	status.HealthSource
	SubmitAnswers(ctx context.Context, answers backend.Answers) (backend.SubmitResult, error)
	Login(ctx context.Context, creds backend.Credentials) (backend.LoginResult, error)
	AdminLogin(ctx context.Context, creds backend.Credentials) (backend.LoginResult, error)
}

// Config holds everything the HTTP server needs.
type Config struct {
	Address      string
	Dev          bool
	TemplatesDir string
	PublicDir    string
	Site         handlers.Site

	Logger   *zap.Logger
	Metrics  *metrics.Manager
	Bundle   *i18n.Bundle
	Sessions *session.Manager
	Auth     auth.Provider
	Backend  Backend
	Content  *cms.Store
	Status   *status.Client

	AcceptLanguage bool
	CookieSecure   bool
	// Scene is the base for /background/scene.json; seed is taken from the query.
	Scene background.Options
}

// New constructs the HTTP server with the middleware stack and routes.
func New(cfg Config) (*http.Server, error) {
	h, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

// NewHandler builds the router. It fails when templates do not parse.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Bundle == nil || cfg.Sessions == nil || cfg.Backend == nil {
		return nil, errors.New("httpserver: bundle, sessions and backend are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewManager()
	}
	if cfg.Auth == nil {
		cfg.Auth = auth.FlagProvider{}
	}
	if cfg.Status == nil {
		cfg.Status = status.NewClient(cfg.Backend)
	}
	if len(cfg.Site.Langs) == 0 {
		cfg.Site.Langs = cfg.Bundle.Supported()
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "templates"
	}
	if cfg.PublicDir == "" {
		cfg.PublicDir = "public"
	}

	renderer, err := NewRenderer(cfg.TemplatesDir, cfg.Dev, cfg.Bundle)
	if err != nil {
		return nil, err
	}
	app := &app{
		cfg:    cfg,
		render: renderer,
		loader: sections.NewLoader(cfg.Backend, cfg.Bundle),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy only behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.RequestLogger(cfg.Logger))
	r.Use(observability.Recovery(cfg.Logger))
	r.Use(cfg.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", cfg.Metrics.Handler())
	r.Handle("/assets/*", mw.Assets(filepath.Join(cfg.PublicDir, "assets"), "/assets/", cfg.Dev))
	r.Get("/background/scene.json", app.sceneJSON)

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Session(cfg.Sessions))
		r.Use(mw.Locale(cfg.Bundle, mw.LocaleConfig{AcceptLanguage: cfg.AcceptLanguage, Secure: cfg.CookieSecure}))
		r.Use(mw.Authenticate(cfg.Auth))
		r.Use(mw.CSRF(mw.CSRFConfig{Secure: cfg.CookieSecure}))
		r.Use(mw.VaryLocale)
		r.Use(backendContext)

		r.Get("/", app.home)
		r.Get("/about", app.contentPage("about"))
		r.Get("/privacy", app.contentPage("privacy"))

		r.Get(LoginPath, app.loginForm(false))
		r.Post(LoginPath, app.loginSubmit(false))
		r.Get(AdminLoginPath, app.loginForm(true))
		r.Post(AdminLoginPath, app.loginSubmit(true))
		r.Post("/logout", app.logout)

		r.Route("/fragments", func(r chi.Router) {
			r.Use(mw.RequireHTMX)
			r.Get("/insights", app.insightsFragment)
			r.Get("/assessments", app.assessmentsFragment)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession(cfg.Auth, auth.CapDashboard, LoginPath))
			r.Get("/dashboard", app.dashboard)
		})
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession(cfg.Auth, auth.CapAssessments, LoginPath))
			r.Get("/assessments", app.assessments)
			r.Get("/assessments/self", app.selfForm)
			r.Post("/assessments/self", app.selfSubmit)
		})
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession(cfg.Auth, auth.CapAdminPanel, AdminLoginPath))
			r.Get("/admin", app.admin)
		})

		r.NotFound(app.notFound)
	})

	return r, nil
}

// backendContext forwards the request locale and credential to API calls.
func backendContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := backend.WithLocale(r.Context(), mw.LocaleFromContext(r.Context()).Lang)
		if sess := auth.FromContext(ctx); sess != nil && strings.TrimSpace(sess.Token) != "" {
			ctx = backend.WithToken(ctx, sess.Token)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
