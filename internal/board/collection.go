package board

import (
	"encoding/json"
	"slices"
)

// Collection is the ordered item list of a project. Insertion order is the
// default stacking order; BringToFront changes Z without reordering.
type Collection struct {
	items []*Item
	maxZ  int
}

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.items) }

// Items returns the items in insertion order. The slice is owned by the
// collection and must not be modified.
func (c *Collection) Items() []*Item { return c.items }

// Get returns the item with id, or nil.
func (c *Collection) Get(id string) *Item {
	for _, it := range c.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Append adds a new item on top of the stack.
func (c *Collection) Append(it *Item) {
	c.maxZ++
	it.Z = c.maxZ
	c.items = append(c.items, it)
}

// Remove deletes the item with id and reports whether it was present.
func (c *Collection) Remove(id string) bool {
	i := slices.IndexFunc(c.items, func(it *Item) bool { return it.ID == id })
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}

// MaxZ returns the highest stacking priority handed out so far.
func (c *Collection) MaxZ() int { return c.maxZ }

// BringToFront raises the item above every other item and returns its new Z.
func (c *Collection) BringToFront(id string) (int, bool) {
	it := c.Get(id)
	if it == nil {
		return 0, false
	}
	c.maxZ++
	it.Z = c.maxZ
	return it.Z, true
}

// StackOrder returns the items from bottom to top.
func (c *Collection) StackOrder() []*Item {
	out := slices.Clone(c.items)
	slices.SortStableFunc(out, func(a, b *Item) int { return a.Z - b.Z })
	return out
}

// MarshalJSON writes the items as an array in insertion order.
func (c Collection) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

// UnmarshalJSON restores items keeping their stored Z. Items without a Z are
// stacked above the rest in insertion order.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var items []*Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.items = c.items[:0]
	c.maxZ = 0
	for _, it := range items {
		if it == nil {
			continue
		}
		c.maxZ = max(c.maxZ, it.Z)
		c.items = append(c.items, it)
	}
	for _, it := range c.items {
		if it.Z <= 0 {
			c.maxZ++
			it.Z = c.maxZ
		}
	}
	return nil
}
