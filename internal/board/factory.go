package board

import (
	"strconv"
	"time"
)

// Create builds a new item of kind centered under the screen point (sx, sy),
// assigns it the next id and appends it to the snapshot.
func Create(s *Snapshot, kind Kind, sx, sy float64, now time.Time) (*Item, error) {
	content, err := NewContent(kind, now)
	if err != nil {
		return nil, err
	}
	w, h := content.DefaultSize()
	center := s.WorldFromScreen(sx, sy)

	it := &Item{
		ID: string(kind) + "-" + strconv.Itoa(s.NextID),
		X:  center.X - w/2,
		Y:  center.Y - h.Or(placementHeight)/2,
	}
	s.NextID++

	switch c := content.(type) {
	case *TaskList:
		c.Tasks = append(c.Tasks, NewTask(""))
	case *NoteBoard:
		c.Sections = append(c.Sections, NewSection(""))
	}

	it.Content = content
	it.SetSize(w, h)
	s.Items.Append(it)
	return it, nil
}

// Delete removes the item with id. Removing an absent id is not an error.
func Delete(s *Snapshot, id string) bool {
	return s.Items.Remove(id)
}
