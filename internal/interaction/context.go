// Package interaction is the pointer-driven canvas engine: a state machine
// that turns pointer events into exactly one of pan, drag, resize or rotate,
// plus the item create/delete/edit operations and wheel zoom.
//
// The engine does no locking. Callers run one handler at a time against a
// single Context.
package interaction

import (
	"context"
	"time"

	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/geom"
)

// Presenter is notified of every change that needs a visual refresh.
type Presenter interface {
	ItemCreated(it *board.Item)
	ItemRemoved(id string)
	ItemGeometryChanged(it *board.Item)
	ItemContentChanged(it *board.Item)
	ViewportChanged(v geom.Viewport)
}

// Saver persists the whole snapshot. One call per triggering action; the
// engine never retries.
type Saver interface {
	Save(ctx context.Context, s *board.Snapshot) error
}

// Measurer resolves content-driven heights.
type Measurer interface {
	Height(it *board.Item) float64
}

// Context is the live state one engine works on. It is owned by a single
// controller and passed to every handler.
type Context struct {
	Snapshot  *board.Snapshot
	Presenter Presenter
	Saver     Saver
	Measurer  Measurer
	Now       func() time.Time
}

func (c *Context) save(ctx context.Context) error {
	if c.Saver == nil {
		return nil
	}
	return c.Saver.Save(ctx, c.Snapshot)
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// height returns the item height, measuring content-driven heights when a
// Measurer is available.
func (c *Context) height(it *board.Item) float64 {
	if v, ok := it.H.Value(); ok {
		return v
	}
	if c.Measurer != nil {
		return c.Measurer.Height(it)
	}
	return it.H.Or(200)
}

// Discard is a Presenter that ignores every notification.
type Discard struct{}

func (Discard) ItemCreated(*board.Item)         {}
func (Discard) ItemRemoved(string)              {}
func (Discard) ItemGeometryChanged(*board.Item) {}
func (Discard) ItemContentChanged(*board.Item)  {}
func (Discard) ViewportChanged(geom.Viewport)   {}

func (c *Context) presenter() Presenter {
	if c.Presenter == nil {
		return Discard{}
	}
	return c.Presenter
}
