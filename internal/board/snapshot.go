package board

import (
	"encoding/json"
	"fmt"

	"github.com/starford/corkboard/internal/geom"
)

// Snapshot is the complete persisted state of one project.
type Snapshot struct {
	Items Collection `json:"items"`
	geom.Viewport
	NextID int `json:"nextId"`
}

// NewSnapshot returns the state of a newly created, empty project.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Viewport: geom.DefaultViewport(),
		NextID:   1,
	}
}

// Normalize repairs a decoded snapshot: missing or out-of-range viewport
// values fall back to defaults, nextId is moved past every id in use, and
// items that cannot be content-sized get their default height back.
func (s *Snapshot) Normalize() {
	if s.Scale == 0 {
		s.Scale = 1
	}
	s.Scale = geom.ClampScale(s.Scale)

	highest := 0
	for _, it := range s.Items.Items() {
		highest = max(highest, idSeq(it.ID))
		if it.H.IsAuto() && !allowsAuto(it.Kind()) {
			_, h := it.Content.DefaultSize()
			it.SetSize(it.W, h)
		}
		if it.W <= 0 {
			w, _ := it.Content.DefaultSize()
			it.SetSize(w, it.H)
		}
	}
	s.NextID = max(s.NextID, highest+1, 1)
}

// allowsAuto reports whether kind may have a content-driven height.
func allowsAuto(k Kind) bool {
	return k == KindTaskList || k == KindSticky
}

// Clone returns a deep copy that shares nothing with s.
func (s *Snapshot) Clone() (*Snapshot, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("board: clone: %w", err)
	}
	out := &Snapshot{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("board: clone: %w", err)
	}
	return out, nil
}
