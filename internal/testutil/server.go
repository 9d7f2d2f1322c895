package testutil

import (
	"net/http"
	"path/filepath"
	"runtime"
	"testing"

	"go.uber.org/zap"

	"booteh.app/web/internal/auth"
	"booteh.app/web/internal/backend"
	"booteh.app/web/internal/cms"
	"booteh.app/web/internal/handlers"
	"booteh.app/web/internal/httpserver"
	"booteh.app/web/internal/i18n"
	"booteh.app/web/internal/metrics"
	"booteh.app/web/internal/session"
	"booteh.app/web/internal/status"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAuthProvider overrides the auth provider.
func WithAuthProvider(p auth.Provider) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Auth = p
	}
}

// WithAcceptLanguage enables Accept-Language locale resolution.
func WithAcceptLanguage() ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.AcceptLanguage = true
	}
}

// RepoRoot returns the module root, for locating templates and locales.
func RepoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// NewHandler builds the full web stack against the fake backend api.
func NewHandler(t testing.TB, api *Backend, opts ...ServerOption) http.Handler {
	t.Helper()

	root := RepoRoot()
	bundle, err := i18n.Load(filepath.Join(root, "locales"), "ar", []string{"ar", "en"})
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	sessions, err := session.NewManager(session.Config{HashKey: session.GenerateKey(32)})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	m := metrics.NewManager()
	client := backend.NewClient(api.URL, backend.WithObserver(m))

	cfg := httpserver.Config{
		Dev:          true,
		TemplatesDir: filepath.Join(root, "templates"),
		PublicDir:    filepath.Join(root, "public"),
		Site:         handlers.Site{Name: "Booteh", BaseURL: "https://booteh.test"},
		Logger:       zap.NewNop(),
		Metrics:      m,
		Bundle:       bundle,
		Sessions:     sessions,
		Auth:         auth.FlagProvider{},
		Backend:      client,
		Content:      cms.NewStore(filepath.Join(root, "content"), "ar", cms.WithCacheTTL(0)),
		Status:       status.NewClient(client, status.WithCacheTTL(0)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	h, err := httpserver.NewHandler(cfg)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return h
}
