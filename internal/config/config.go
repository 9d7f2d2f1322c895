// Package config loads runtime configuration for the web front-end.
package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultAddr           = ":8080"
	defaultEnv            = "development"
	defaultBackendBaseURL = "http://localhost:8000"
	defaultBackendTimeout = 8 * time.Second
	defaultLocale         = "ar"
	defaultLogLevel       = "info"

	// AuthModeFlag treats any non-empty login flag cookie as authenticated.
	AuthModeFlag = "flag"
	// AuthModeToken verifies the backend-issued JWT.
	AuthModeToken = "token"
)

// Config captures all runtime configuration for the web process.
type Config struct {
	Addr string `koanf:"addr"`
	Env  string `koanf:"env"`
	// Dev reparses templates per request and hot-reloads locale files.
	Dev bool `koanf:"dev"`

	BackendBaseURL string        `koanf:"backend_base_url"`
	BackendTimeout time.Duration `koanf:"backend_timeout"`

	// Login routes below /api on the backend.
	BackendLoginPath      string `koanf:"backend_login_path"`
	BackendAdminLoginPath string `koanf:"backend_admin_login_path"`

	TemplatesDir string `koanf:"templates_dir"`
	PublicDir    string `koanf:"public_dir"`
	LocalesDir   string `koanf:"locales_dir"`
	ContentDir   string `koanf:"content_dir"`

	DefaultLocale  string `koanf:"default_locale"`
	AcceptLanguage bool   `koanf:"accept_language"`

	AuthMode  string `koanf:"auth_mode"`
	JWTSecret string `koanf:"jwt_secret"`

	SessionHashKey  string `koanf:"session_hash_key"`
	SessionBlockKey string `koanf:"session_block_key"`
	CookieSecure    bool   `koanf:"cookie_secure"`

	LogLevel string `koanf:"log_level"`

	SiteName        string `koanf:"site_name"`
	BaseURL         string `koanf:"base_url"`
	PlausibleDomain string `koanf:"plausible_domain"`
	// SceneSeed is the default background seed when a request names none.
	SceneSeed int64 `koanf:"scene_seed"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:                  defaultAddr,
		Env:                   defaultEnv,
		BackendBaseURL:        defaultBackendBaseURL,
		BackendTimeout:        defaultBackendTimeout,
		BackendLoginPath:      "auth/login",
		BackendAdminLoginPath: "admin/login",
		TemplatesDir:          "templates",
		PublicDir:             "public",
		LocalesDir:            "locales",
		ContentDir:            "content",
		DefaultLocale:         defaultLocale,
		AuthMode:              AuthModeFlag,
		LogLevel:              defaultLogLevel,
		SiteName:              "Booteh",
		BaseURL:               "http://localhost:8080",
		SceneSeed:             1,
	}
}

// ValidationError is returned when fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Validate normalises values and reports every invalid field at once.
func (c *Config) Validate() error {
	c.BackendBaseURL = strings.TrimRight(strings.TrimSpace(c.BackendBaseURL), "/")
	if c.BackendBaseURL == "" {
		c.BackendBaseURL = defaultBackendBaseURL
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.BackendLoginPath = strings.Trim(strings.TrimSpace(c.BackendLoginPath), "/")
	c.BackendAdminLoginPath = strings.Trim(strings.TrimSpace(c.BackendAdminLoginPath), "/")
	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	c.DefaultLocale = strings.ToLower(strings.TrimSpace(c.DefaultLocale))

	var invalid []string
	if strings.TrimSpace(c.Addr) == "" {
		invalid = append(invalid, "addr")
	}
	if c.BackendTimeout <= 0 {
		invalid = append(invalid, "backend_timeout")
	}
	if c.BackendLoginPath == "" {
		invalid = append(invalid, "backend_login_path")
	}
	if c.BackendAdminLoginPath == "" {
		invalid = append(invalid, "backend_admin_login_path")
	}
	switch c.AuthMode {
	case AuthModeFlag:
	case AuthModeToken:
		if strings.TrimSpace(c.JWTSecret) == "" {
			invalid = append(invalid, "jwt_secret")
		}
	default:
		invalid = append(invalid, "auth_mode")
	}
	if c.DefaultLocale == "" {
		invalid = append(invalid, "default_locale")
	}
	if n := len(c.SessionHashKey); n != 0 && n < 32 {
		invalid = append(invalid, "session_hash_key")
	}
	switch len(c.SessionBlockKey) {
	case 0, 16, 24, 32:
	default:
		invalid = append(invalid, "session_block_key")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

// Production reports whether the process runs in a production environment.
func (c *Config) Production() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "prod", "production":
		return true
	}
	return false
}
