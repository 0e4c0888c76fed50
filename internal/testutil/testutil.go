// Package testutil provides shared test helpers for the project index,
// snapshot storage and engine collaborators.
package testutil

import (
	"os"
	"sync"
	"testing"

	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/geom"
	"github.com/starford/corkboard/internal/index"
	"github.com/starford/corkboard/internal/persistence"
	"github.com/starford/corkboard/internal/storage"
)

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "corkboard-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary directory-backed store and a gateway on it.
func TestStore(t *testing.T) (*storage.FS, *persistence.Gateway) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return fs, persistence.New(fs)
}

// Recorder is a presenter that records notification names in order.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) add(name string) {
	r.mu.Lock()
	r.events = append(r.events, name)
	r.mu.Unlock()
}

func (r *Recorder) ItemCreated(it *board.Item)         { r.add("created:" + it.ID) }
func (r *Recorder) ItemRemoved(id string)              { r.add("removed:" + id) }
func (r *Recorder) ItemGeometryChanged(it *board.Item) { r.add("geometry:" + it.ID) }
func (r *Recorder) ItemContentChanged(it *board.Item)  { r.add("content:" + it.ID) }
func (r *Recorder) ViewportChanged(geom.Viewport)      { r.add("viewport") }

// Events returns a copy of the recorded notifications.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
