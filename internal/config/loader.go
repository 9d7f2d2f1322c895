package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "BOOTEH_"
	configFileEnv = "BOOTEH_CONFIG"
)

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	file string
}

// WithFile loads the YAML file at path, overriding BOOTEH_CONFIG.
func WithFile(path string) Option {
	return func(o *loaderOptions) {
		o.file = path
	}
}

// Load builds a Config by layering defaults, an optional YAML file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or BOOTEH_CONFIG
//  3. env (prefix BOOTEH_), e.g. BOOTEH_BACKEND_BASE_URL -> backend_base_url
func Load(_ context.Context, opts ...Option) (*Config, error) {
	options := loaderOptions{file: os.Getenv(configFileEnv)}
	for _, opt := range opts {
		opt(&options)
	}

	k := koanf.New(".")

	if path := strings.TrimSpace(options.file); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
