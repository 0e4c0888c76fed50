package interaction

import (
	"context"
	"math"

	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/geom"
)

// Mode is the interaction currently driven by the pointer.
type Mode int

// Interaction modes.
const (
	Idle Mode = iota
	Panning
	Dragging
	Resizing
	Rotating
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case Rotating:
		return "rotating"
	}
	return "unknown"
}

// Machine tracks the active mode and what was captured when it began. The
// zero value is idle and ready for use.
type Machine struct {
	mode   Mode
	target string

	last       geom.Point // panning: previous screen position
	dragOffset geom.Point // dragging: world pointer minus item origin
	start      geom.Point // resizing: screen position at pointer-down
	startSize  board.Size // resizing: item size at pointer-down
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode { return m.mode }

// Target returns the id of the item being dragged, resized or rotated.
func (m *Machine) Target() string { return m.target }

// DragOffset returns the offset captured at drag start.
func (m *Machine) DragOffset() geom.Point { return m.dragOffset }

// Reset returns to Idle and clears all captured state.
func (m *Machine) Reset() { *m = Machine{} }

// PointerDown classifies the event and enters a mode. A pointer-down while a
// mode is already active is ignored.
func (m *Machine) PointerDown(c *Context, ev Pointer) Mode {
	if m.mode != Idle {
		return m.mode
	}
	s := c.Snapshot

	var it *board.Item
	if ev.Target.OverItem() {
		it = s.Items.Get(ev.Target.ItemID)
	}

	switch {
	case it != nil && ev.Target.Part == PartRotateHandle:
		m.mode, m.target = Rotating, it.ID

	case it != nil && ev.Target.Part == PartResizeHandle:
		m.mode, m.target = Resizing, it.ID
		m.start = geom.Point{X: ev.X, Y: ev.Y}
		m.startSize = resizeStart(it)

	case it != nil && (ev.Target.Part != PartControl || ev.Modifier):
		m.mode, m.target = Dragging, it.ID
		w := s.WorldFromScreen(ev.X, ev.Y)
		m.dragOffset = geom.Point{X: w.X - it.X, Y: w.Y - it.Y}
		s.Items.BringToFront(it.ID)
		c.presenter().ItemGeometryChanged(it)

	case it == nil:
		m.mode = Panning
		m.last = geom.Point{X: ev.X, Y: ev.Y}
	}
	return m.mode
}

// resizeStart is the size a resize gesture starts from. Content-driven
// heights fall back to the variant's resize size.
func resizeStart(it *board.Item) board.Size {
	fb := it.Content.ResizeFallback()
	size := board.Size{W: it.W, H: it.H.Or(fb.H)}
	if size.W <= 0 {
		size.W = fb.W
	}
	return size
}

// PointerMove applies the active mode. If the target item no longer exists
// the event is dropped.
func (m *Machine) PointerMove(c *Context, ev Pointer) {
	s := c.Snapshot
	switch m.mode {
	case Idle:
		return

	case Panning:
		s.PanBy(ev.X-m.last.X, ev.Y-m.last.Y)
		m.last = geom.Point{X: ev.X, Y: ev.Y}
		c.presenter().ViewportChanged(s.Viewport)
		return
	}

	it := s.Items.Get(m.target)
	if it == nil {
		return
	}

	switch m.mode {
	case Dragging:
		w := s.WorldFromScreen(ev.X, ev.Y)
		it.X = w.X - m.dragOffset.X
		it.Y = w.Y - m.dragOffset.Y

	case Resizing:
		dx := (ev.X - m.start.X) / s.Scale
		dy := (ev.Y - m.start.Y) / s.Scale
		it.SetSize(it.Content.Resize(m.startSize, dx, dy))

	case Rotating:
		center := s.ScreenFromWorld(it.X+it.W/2, it.Y+c.height(it)/2)
		it.Rotation = RotationFor(center, geom.Point{X: ev.X, Y: ev.Y})
	}
	c.presenter().ItemGeometryChanged(it)
}

// RotationFor returns the rotation in degrees that points an item centered at
// center toward the pointer. The handle sits above the item, so a pointer
// straight up is 0 and straight right is 90. The result is not normalized.
func RotationFor(center, pointer geom.Point) float64 {
	return math.Atan2(pointer.Y-center.Y, pointer.X-center.X)*180/math.Pi + 90
}

// PointerUp ends the active mode. When a mode was active the snapshot is
// saved once and the save error, if any, is returned.
func (m *Machine) PointerUp(ctx context.Context, c *Context) error {
	was := m.mode
	m.Reset()
	if was == Idle {
		return nil
	}
	return c.save(ctx)
}
