package config

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch monitors path for changes and calls onChange with the freshly
// loaded Config each time the file is rewritten. It runs until ctx is
// cancelled.
//
// A reload that fails validation is logged and the previous config stays
// active; onChange is not called.
func Watch(ctx context.Context, log *zap.Logger, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.Info("config_watching", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// editors often save via rename, which arrives as Create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Warn("config_reload_failed", zap.String("path", path), zap.Error(err))
				continue
			}

			log.Info("config_reloaded", zap.String("path", path))
			onChange(cfg)

			// an atomic save may have replaced the inode
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config_watch_error", zap.Error(err))
		}
	}
}
