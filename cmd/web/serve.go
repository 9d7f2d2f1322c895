package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"booteh.app/web/internal/auth"
	"booteh.app/web/internal/background"
	"booteh.app/web/internal/backend"
	"booteh.app/web/internal/cms"
	"booteh.app/web/internal/config"
	"booteh.app/web/internal/handlers"
	"booteh.app/web/internal/httpserver"
	"booteh.app/web/internal/i18n"
	"booteh.app/web/internal/metrics"
	"booteh.app/web/internal/observability"
	"booteh.app/web/internal/session"
)

const shutdownTimeout = 10 * time.Second

var supportedLocales = []string{"ar", "en"}

func newServeCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	return cmd
}

func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	var opts []config.Option
	if path != "" {
		opts = append(opts, config.WithFile(path))
	}
	return config.Load(ctx, opts...)
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	bundle, err := i18n.Load(cfg.LocalesDir, cfg.DefaultLocale, supportedLocales)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	sessions, err := newSessionManager(cfg, logger)
	if err != nil {
		return err
	}
	provider, err := newAuthProvider(cfg, logger)
	if err != nil {
		return err
	}

	m := metrics.NewManager()
	client := backend.NewClient(cfg.BackendBaseURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithLoginPaths(cfg.BackendLoginPath, cfg.BackendAdminLoginPath),
		backend.WithObserver(m),
		backend.WithLogger(logger),
	)

	var contentOpts []cms.Option
	if cfg.Dev {
		contentOpts = append(contentOpts, cms.WithCacheTTL(0))
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:      cfg.Addr,
		Dev:          cfg.Dev,
		TemplatesDir: cfg.TemplatesDir,
		PublicDir:    cfg.PublicDir,
		Site: handlers.Site{
			Name:      cfg.SiteName,
			BaseURL:   cfg.BaseURL,
			Langs:     bundle.Supported(),
			Analytics: handlers.Analytics{PlausibleDomain: cfg.PlausibleDomain, Debug: cfg.Dev},
		},
		Logger:         logger,
		Metrics:        m,
		Bundle:         bundle,
		Sessions:       sessions,
		Auth:           provider,
		Backend:        client,
		Content:        cms.NewStore(cfg.ContentDir, cfg.DefaultLocale, contentOpts...),
		AcceptLanguage: cfg.AcceptLanguage,
		CookieSecure:   cfg.CookieSecure,
		Scene:          background.Options{Seed: cfg.SceneSeed},
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Dev {
		g.Go(func() error {
			if err := i18n.Watch(gctx, bundle, logger); err != nil {
				logger.Warn("locale watcher stopped", zap.Error(err))
			}
			return nil
		})
	}
	g.Go(func() error {
		logger.Info("web listening",
			zap.String("addr", cfg.Addr),
			zap.Bool("dev", cfg.Dev),
			zap.String("backend", client.BaseURL()),
			zap.String("auth_mode", cfg.AuthMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newSessionManager(cfg *config.Config, logger *zap.Logger) (*session.Manager, error) {
	hashKey, blockKey := []byte(cfg.SessionHashKey), []byte(cfg.SessionBlockKey)
	if len(hashKey) == 0 {
		if cfg.Production() {
			return nil, errors.New("session_hash_key is required in production")
		}
		logger.Warn("session keys not configured; generating ephemeral keys")
		hashKey = session.GenerateKey(64)
		blockKey = session.GenerateKey(32)
	}
	sessions, err := session.NewManager(session.Config{
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}
	return sessions, nil
}

func newAuthProvider(cfg *config.Config, logger *zap.Logger) (auth.Provider, error) {
	if cfg.AuthMode == config.AuthModeToken {
		p, err := auth.NewTokenProvider(cfg.JWTSecret, auth.WithTokenLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("auth provider: %w", err)
		}
		return p, nil
	}
	return auth.FlagProvider{}, nil
}
