package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// WatchSettings reloads the configuration whenever the file at path changes
// and swaps the auth settings in store when the reloaded configuration is
// valid. Invalid reloads are logged and the previous settings stay in force.
// It blocks until ctx is done.
//
// The parent directory is watched rather than the file, since editors and
// config management usually replace the file instead of writing it.
func WatchSettings(ctx context.Context, path string, reload func() (*Config, error), store *SettingsStore, logger logging.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	logger = logger.With("module", "config_watcher", "file", target)
	logger.Info(ctx, "watching config file for auth settings changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			applyReload(ctx, reload, store, logger)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn(ctx, "config watcher error", "error", err)
		}
	}
}

func applyReload(ctx context.Context, reload func() (*Config, error), store *SettingsStore, logger logging.Logger) {
	cfg, err := reload()
	if err != nil {
		logger.Warn(ctx, "config reload rejected, keeping current auth settings", "error", err)
		return
	}

	next := cfg.Settings()
	if next.Equal(store.Load()) {
		return
	}
	if err := store.Store(next); err != nil {
		logger.Warn(ctx, "config reload rejected, keeping current auth settings", "error", err)
		return
	}
	logger.Info(ctx, "auth settings reloaded", "token_lifetime_minutes", next.TokenLifetimeMinutes)
}
