package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/corkboard/internal/persistence"
)

// Sync brings the index up to date with the stored snapshots:
//   - new or changed snapshots are summarized and touched
//   - entries whose snapshot was saved once but is now gone are removed
//
// Projects that were created but never saved have no snapshot yet and are
// kept.
func Sync(ctx context.Context, db *DB, gw *persistence.Gateway, logger *slog.Logger) error {
	ids, err := gw.List(ctx)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	stored := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		stored[id] = struct{}{}
		changed, err := indexSnapshot(ctx, db, gw, id, checksums[id])
		if err != nil {
			logger.Warn("sync: index failed", slog.String("project", id), slog.String("error", err.Error()))
			continue
		}
		if changed {
			logger.Debug("sync: indexed", slog.String("project", id))
		}
	}

	for id, cs := range checksums {
		if _, ok := stored[id]; ok || cs == "" {
			continue
		}
		if err := db.DeleteProject(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("project", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("project", id))
		}
	}
	return nil
}

// indexSnapshot re-summarizes one stored snapshot unless its checksum equals
// known. It reports whether the index changed.
func indexSnapshot(ctx context.Context, db *DB, gw *persistence.Gateway, id, known string) (bool, error) {
	data, cs, err := gw.Raw(ctx, id)
	if err != nil {
		return false, err
	}
	if cs == known {
		return false, nil
	}
	s, err := persistence.Decode(data)
	if err != nil {
		return false, err
	}
	if err := db.Touch(id, time.Now().UnixMilli(), Summarize(s), cs); err != nil {
		return false, err
	}
	return true, nil
}
