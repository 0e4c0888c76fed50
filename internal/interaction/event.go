package interaction

import (
	"encoding/json"
	"fmt"
)

// Part is the region of the canvas a pointer event landed on.
type Part int

// Pointer targets.
const (
	PartCanvas Part = iota // empty canvas, no item
	PartBody
	PartDragHandle
	PartResizeHandle
	PartRotateHandle
	PartControl // an input inside an item that handles its own events
)

var partNames = map[Part]string{
	PartCanvas:       "canvas",
	PartBody:         "body",
	PartDragHandle:   "drag-handle",
	PartResizeHandle: "resize-handle",
	PartRotateHandle: "rotate-handle",
	PartControl:      "control",
}

func (p Part) String() string {
	if s, ok := partNames[p]; ok {
		return s
	}
	return fmt.Sprintf("part(%d)", int(p))
}

// MarshalJSON writes the part name.
func (p Part) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON reads a part name.
func (p *Part) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for k, v := range partNames {
		if v == s {
			*p = k
			return nil
		}
	}
	if s == "" {
		*p = PartCanvas
		return nil
	}
	return fmt.Errorf("interaction: unknown target part %q", s)
}

// Target identifies what is under the pointer.
type Target struct {
	ItemID string `json:"itemId,omitempty"`
	Part   Part   `json:"part"`
}

// OverItem reports whether the target belongs to an item.
func (t Target) OverItem() bool {
	return t.ItemID != "" && t.Part != PartCanvas
}

// Pointer is a pointer event in screen coordinates.
type Pointer struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Target   Target  `json:"target"`
	Modifier bool    `json:"modifier,omitempty"`
}
