package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/corkboard/internal/persistence"
	"github.com/starford/corkboard/internal/storage"
)

// Watcher event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind string, projectID string)

// Watch follows the snapshot directory of a file store and keeps the index
// in step with snapshots written by other processes, until ctx is cancelled.
// Writes whose checksum the index already holds, such as this process's own
// saves, are skipped without a callback.
//
// Rename events trigger a debounced reconciliation pass over the whole
// directory.
func Watch(ctx context.Context, db *DB, gw *persistence.Gateway, fs *storage.FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(fs.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", fs.Root()))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	notify := func(kind, id string) {
		if cb != nil {
			cb(kind, id)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(ctx, db, gw, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			key, ok := fs.KeyForPath(ev.Name)
			if !ok {
				continue
			}
			id, ok := persistence.ProjectID(key)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				checksums, err := db.AllChecksums()
				if err != nil {
					logger.Warn("watcher: checksums failed", slog.String("error", err.Error()))
					continue
				}
				known, existed := checksums[id]
				changed, err := indexSnapshot(ctx, db, gw, id, known)
				if err != nil {
					logger.Warn("watcher: index failed", slog.String("project", id), slog.String("error", err.Error()))
					continue
				}
				if !changed {
					continue
				}
				kind := EventUpdated
				if !existed {
					kind = EventCreated
				}
				logger.Debug("watcher: indexed", slog.String("project", id), slog.String("op", kind))
				notify(kind, id)

			case ev.Op&fsnotify.Remove != 0:
				if err := db.DeleteProject(id); err != nil {
					logger.Warn("watcher: delete failed", slog.String("project", id), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("project", id))
				notify(EventDeleted, id)

			case ev.Op&fsnotify.Rename != 0:
				// The new name, if it stays in the directory, arrives as a
				// separate Create.
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile drops entries whose snapshot vanished and indexes snapshots the
// index has not seen.
func reconcile(ctx context.Context, db *DB, gw *persistence.Gateway, logger *slog.Logger, notify func(kind, id string)) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	ids, err := gw.List(ctx)
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	stored := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		stored[id] = struct{}{}
		known, existed := checksums[id]
		changed, err := indexSnapshot(ctx, db, gw, id, known)
		if err != nil || !changed {
			continue
		}
		kind := EventUpdated
		if !existed {
			kind = EventCreated
		}
		logger.Debug("reconcile: indexed", slog.String("project", id))
		notify(kind, id)
	}

	for id, cs := range checksums {
		if _, ok := stored[id]; ok || cs == "" {
			continue
		}
		if err := db.DeleteProject(id); err == nil {
			logger.Debug("reconcile: removed stale", slog.String("project", id))
			notify(EventDeleted, id)
		}
	}
}
