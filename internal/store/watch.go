package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadCallback is called after a watcher-driven snapshot reload.
type ReloadCallback func()

// WatchSnapshot watches the snapshot file for out-of-band changes (the file
// being replaced or edited externally) and reloads the local store until ctx
// is cancelled. It calls cb (if non-nil) after each successful reload.
//
// The parent directory is watched rather than the file itself because the
// store's own atomic writes replace the file via rename, which would
// invalidate a direct file watch. Reloads are debounced so a burst of events
// collapses into one reload; the store's own writes also land here, making
// reload-after-own-write a harmless no-op.
func WatchSnapshot(ctx context.Context, local *Local, path string, logger *slog.Logger, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("snapshot watcher: started", slog.String("path", path))

	// reloadTimer debounces bursts of file events into one reload.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("snapshot watcher: stopped")
			return nil

		case <-reloadCh:
			if err := local.Reload(); err != nil {
				logger.Warn("snapshot watcher: reload failed",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			logger.Debug("snapshot watcher: reloaded", slog.String("path", path))
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("snapshot watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
