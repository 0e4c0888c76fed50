// Package board is the whiteboard item model: typed items, the ordered
// collection that holds them, and the project snapshot that is persisted.
package board

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Item is one movable object on the canvas. X and Y are the world-space top
// left corner; Z is the stacking priority (higher draws on top).
type Item struct {
	ID       string
	X        float64
	Y        float64
	W        float64
	H        Height
	Rotation float64
	Z        int
	Content  Content
}

// Kind returns the variant of the item.
func (it *Item) Kind() Kind { return it.Content.Kind() }

// Size returns the item size with a content-driven height replaced by fallback.
func (it *Item) Size(fallback float64) Size {
	return Size{W: it.W, H: it.H.Or(fallback)}
}

// SetSize stores a new size and refreshes derived geometry.
func (it *Item) SetSize(w float64, h Height) {
	it.W = w
	it.H = h
	it.Content.Refit(w, h)
}

// header is the wire form of the fields every variant shares.
type header struct {
	ID       string  `json:"id"`
	Type     Kind    `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        Height  `json:"h"`
	Rotation float64 `json:"rotation"`
	Z        int     `json:"z"`
}

// MarshalJSON writes the item as one flat object with a "type" tag.
func (it *Item) MarshalJSON() ([]byte, error) {
	if it.Content == nil {
		return nil, fmt.Errorf("board: item %s has no content", it.ID)
	}
	return it.Content.encode(header{
		ID:       it.ID,
		Type:     it.Content.Kind(),
		X:        it.X,
		Y:        it.Y,
		W:        it.W,
		H:        it.H,
		Rotation: it.Rotation,
		Z:        it.Z,
	})
}

// UnmarshalJSON reads the flat form written by MarshalJSON.
func (it *Item) UnmarshalJSON(data []byte) error {
	var hdr header
	if err := json.Unmarshal(data, &hdr); err != nil {
		return fmt.Errorf("board: item header: %w", err)
	}
	kind := hdr.Type
	if kind == "" {
		kind = kindFromID(hdr.ID)
	}
	content, err := NewContent(kind, time.Time{})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, content); err != nil {
		return fmt.Errorf("board: item %s: %w", hdr.ID, err)
	}
	*it = Item{
		ID:       hdr.ID,
		X:        hdr.X,
		Y:        hdr.Y,
		W:        hdr.W,
		H:        hdr.H,
		Rotation: hdr.Rotation,
		Z:        hdr.Z,
		Content:  content,
	}
	it.Content.Refit(it.W, it.H)
	return nil
}

// kindFromID recovers the kind from a "<type>-<seq>" id.
func kindFromID(id string) Kind {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 {
		return ""
	}
	return Kind(id[:i])
}

// idSeq returns the sequence number of a "<type>-<seq>" id, or 0.
func idSeq(id string) int {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0
	}
	return n
}
