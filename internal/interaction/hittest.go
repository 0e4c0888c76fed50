package interaction

import (
	"math"

	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/geom"
)

// Handle geometry in screen pixels.
const (
	handleSize     = 16.0 // resize square in the bottom-right corner
	rotateRadius   = 10.0 // rotate knob radius
	rotateDistance = 24.0 // rotate knob center above the top edge
	headerHeight   = 36.0 // drag strip of task lists and note boards
	stickyGrip     = 24.0 // drag strip of sticky notes
)

// HitTest classifies the screen point (sx, sy) the way the presentation layer
// does for its own nodes, for callers that only know coordinates. Items are
// tested from the top of the stack down.
func HitTest(c *Context, sx, sy float64) Target {
	s := c.Snapshot
	order := s.Items.StackOrder()
	for i := len(order) - 1; i >= 0; i-- {
		it := order[i]
		if part, ok := hitItem(c, it, sx, sy); ok {
			return Target{ItemID: it.ID, Part: part}
		}
	}
	return Target{Part: PartCanvas}
}

// hitItem tests one item in its own unrotated, screen-scaled frame.
func hitItem(c *Context, it *board.Item, sx, sy float64) (Part, bool) {
	s := c.Snapshot
	w := it.W * s.Scale
	h := c.height(it) * s.Scale
	origin := s.ScreenFromWorld(it.X, it.Y)
	center := geom.Point{X: origin.X + w/2, Y: origin.Y + h/2}

	// Undo the item rotation around its center.
	rad := -it.Rotation * math.Pi / 180
	dx, dy := sx-center.X, sy-center.Y
	lx := dx*math.Cos(rad) - dy*math.Sin(rad) + w/2
	ly := dx*math.Sin(rad) + dy*math.Cos(rad) + h/2

	if math.Hypot(lx-w/2, ly+rotateDistance) <= rotateRadius {
		return PartRotateHandle, true
	}
	if lx < 0 || ly < 0 || lx > w || ly > h {
		return PartCanvas, false
	}
	if lx >= w-handleSize && ly >= h-handleSize {
		return PartResizeHandle, true
	}

	switch it.Kind() {
	case board.KindTaskList, board.KindNoteBoard:
		if ly <= headerHeight {
			return PartDragHandle, true
		}
		return PartControl, true
	case board.KindSticky:
		if ly <= stickyGrip {
			return PartDragHandle, true
		}
		return PartControl, true
	}
	return PartBody, true
}
