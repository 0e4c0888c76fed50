// Package persistence stores project snapshots in a storage.Store as JSON
// under the key project_<id>.
package persistence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/storage"
)

// KeyPrefix starts every snapshot key.
const KeyPrefix = "project_"

// Key returns the storage key of a project.
func Key(projectID string) string { return KeyPrefix + projectID }

// ProjectID extracts the project id from a storage key.
func ProjectID(key string) (string, bool) {
	id, ok := strings.CutPrefix(key, KeyPrefix)
	return id, ok && id != ""
}

// Gateway loads and saves snapshots.
type Gateway struct {
	store storage.Store
}

// New wraps a store.
func New(store storage.Store) *Gateway {
	return &Gateway{store: store}
}

// Decode parses a stored snapshot and fills in defaults for missing fields.
func Decode(data []byte) (*board.Snapshot, error) {
	s := board.NewSnapshot()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("persistence: decode snapshot: %w", err)
	}
	s.Normalize()
	return s, nil
}

// Encode serializes a snapshot.
func Encode(s *board.Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode snapshot: %w", err)
	}
	return data, nil
}

// Checksum fingerprints encoded snapshot bytes. Writers record it so that a
// change notification for their own write can be told apart from an
// external edit.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Load returns the stored snapshot, or an error wrapping apperr.ErrNotFound.
func (g *Gateway) Load(ctx context.Context, projectID string) (*board.Snapshot, error) {
	data, err := g.store.Get(ctx, Key(projectID))
	if err != nil {
		return nil, fmt.Errorf("persistence: load %s: %w", projectID, err)
	}
	return Decode(data)
}

// Save writes the whole snapshot and returns the checksum of what was written.
func (g *Gateway) Save(ctx context.Context, projectID string, s *board.Snapshot) (string, error) {
	data, err := Encode(s)
	if err != nil {
		return "", err
	}
	if err := g.store.Set(ctx, Key(projectID), data); err != nil {
		return "", fmt.Errorf("persistence: save %s: %w", projectID, err)
	}
	return Checksum(data), nil
}

// Delete removes the snapshot of a project.
func (g *Gateway) Delete(ctx context.Context, projectID string) error {
	if err := g.store.Delete(ctx, Key(projectID)); err != nil {
		return fmt.Errorf("persistence: delete %s: %w", projectID, err)
	}
	return nil
}

// List returns the ids of every project with a stored snapshot.
func (g *Gateway) List(ctx context.Context) ([]string, error) {
	keys, err := g.store.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("persistence: list: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id, ok := ProjectID(k); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Raw returns the stored bytes of a snapshot and their checksum.
func (g *Gateway) Raw(ctx context.Context, projectID string) ([]byte, string, error) {
	data, err := g.store.Get(ctx, Key(projectID))
	if err != nil {
		return nil, "", fmt.Errorf("persistence: read %s: %w", projectID, err)
	}
	return data, Checksum(data), nil
}
