package interaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/corkboard/internal/apperr"
	"github.com/starford/corkboard/internal/board"
)

// Zoom applies a wheel step anchored at the screen point (sx, sy). Zooming
// bypasses the state machine and is never saved on its own.
func Zoom(c *Context, sx, sy, rawDelta float64) {
	c.Snapshot.ZoomAt(sx, sy, rawDelta)
	c.presenter().ViewportChanged(c.Snapshot.Viewport)
}

// CreateItem places a new item centered under the screen point and saves.
// The item is returned even when the save fails.
func CreateItem(ctx context.Context, c *Context, kind board.Kind, sx, sy float64) (*board.Item, error) {
	it, err := board.Create(c.Snapshot, kind, sx, sy, c.now())
	if err != nil {
		return nil, err
	}
	c.presenter().ItemCreated(it)
	return it, c.save(ctx)
}

// DeleteItem removes an item and saves. Deleting an absent id still saves
// and is not an error.
func DeleteItem(ctx context.Context, c *Context, id string) error {
	if board.Delete(c.Snapshot, id) {
		c.presenter().ItemRemoved(id)
	}
	return c.save(ctx)
}

// EditItem applies field edits in order and saves once. An edit that fails
// stops the sequence; edits already applied are still saved.
func EditItem(ctx context.Context, c *Context, id string, edits ...board.Edit) error {
	it := c.Snapshot.Items.Get(id)
	if it == nil {
		return fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	applied := 0
	var editErr error
	for _, e := range edits {
		if editErr = e(it); editErr != nil {
			break
		}
		applied++
	}
	if applied == 0 {
		return editErr
	}
	c.presenter().ItemContentChanged(it)
	return errors.Join(editErr, c.save(ctx))
}

// BringToFront raises an item above all others without a drag and saves.
func BringToFront(ctx context.Context, c *Context, id string) error {
	it := c.Snapshot.Items.Get(id)
	if it == nil {
		return fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	c.Snapshot.Items.BringToFront(id)
	c.presenter().ItemGeometryChanged(it)
	return c.save(ctx)
}
