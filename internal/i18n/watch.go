package i18n

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads the bundle whenever a locale file changes, until ctx is done.
// Rapid saves are collapsed into one reload.
func Watch(ctx context.Context, b *Bundle, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("i18n: create watcher: %w", err)
	}
	if err := watcher.Add(b.Dir()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("i18n: watch %s: %w", b.Dir(), err)
	}

	go func() {
		defer watcher.Close()
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				pending = time.After(reloadDebounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("locale watcher error", zap.Error(err))
			case <-pending:
				pending = nil
				if err := b.Reload(); err != nil {
					logger.Warn("locale reload failed", zap.Error(err))
					continue
				}
				logger.Info("locales reloaded", zap.String("dir", b.Dir()))
			}
		}
	}()
	return nil
}
