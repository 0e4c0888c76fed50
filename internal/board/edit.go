package board

import (
	"fmt"
	"slices"

	"github.com/starford/corkboard/internal/apperr"
)

// Edit is a field mutation applied to a single item. Edits only check that
// they apply to the item's variant; text is stored as given.
type Edit func(*Item) error

func wrongKind(it *Item, what string) error {
	return fmt.Errorf("%w: %s on %s", apperr.ErrWrongKind, what, it.Kind())
}

// SetTitle renames a task list or note board.
func SetTitle(title string) Edit {
	return func(it *Item) error {
		switch c := it.Content.(type) {
		case *TaskList:
			c.Title = title
		case *NoteBoard:
			c.Title = title
		default:
			return wrongKind(it, "title")
		}
		return nil
	}
}

// SetText replaces the text of a sticky note.
func SetText(text string) Edit {
	return func(it *Item) error {
		c, ok := it.Content.(*StickyNote)
		if !ok {
			return wrongKind(it, "text")
		}
		c.Text = text
		return nil
	}
}

// SetColor recolors a sticky note (palette colors only) or an arrow (any color).
func SetColor(color string) Edit {
	return func(it *Item) error {
		switch c := it.Content.(type) {
		case *StickyNote:
			sc := StickyColor(color)
			if !sc.Valid() {
				return fmt.Errorf("%w: sticky color %q", apperr.ErrInvalid, color)
			}
			c.Color = sc
		case *Arrow:
			c.Color = color
		default:
			return wrongKind(it, "color")
		}
		return nil
	}
}

func taskList(it *Item) (*TaskList, error) {
	c, ok := it.Content.(*TaskList)
	if !ok {
		return nil, wrongKind(it, "task edit")
	}
	return c, nil
}

func taskIndex(c *TaskList, id string) (int, error) {
	i := slices.IndexFunc(c.Tasks, func(t Task) bool { return t.ID == id })
	if i < 0 {
		return 0, fmt.Errorf("task %s: %w", id, apperr.ErrNotFound)
	}
	return i, nil
}

// AddTask appends a task to a task list.
func AddTask(text string) Edit {
	return func(it *Item) error {
		c, err := taskList(it)
		if err != nil {
			return err
		}
		c.Tasks = append(c.Tasks, NewTask(text))
		return nil
	}
}

// SetTaskText changes the text of one task.
func SetTaskText(taskID, text string) Edit {
	return func(it *Item) error {
		c, err := taskList(it)
		if err != nil {
			return err
		}
		i, err := taskIndex(c, taskID)
		if err != nil {
			return err
		}
		c.Tasks[i].Text = text
		return nil
	}
}

// SetTaskChecked ticks or unticks one task.
func SetTaskChecked(taskID string, checked bool) Edit {
	return func(it *Item) error {
		c, err := taskList(it)
		if err != nil {
			return err
		}
		i, err := taskIndex(c, taskID)
		if err != nil {
			return err
		}
		c.Tasks[i].Checked = checked
		return nil
	}
}

// RemoveTask deletes one task.
func RemoveTask(taskID string) Edit {
	return func(it *Item) error {
		c, err := taskList(it)
		if err != nil {
			return err
		}
		i, err := taskIndex(c, taskID)
		if err != nil {
			return err
		}
		c.Tasks = slices.Delete(c.Tasks, i, i+1)
		return nil
	}
}

func noteBoard(it *Item) (*NoteBoard, error) {
	c, ok := it.Content.(*NoteBoard)
	if !ok {
		return nil, wrongKind(it, "note board edit")
	}
	return c, nil
}

func sectionIndex(c *NoteBoard, id string) (int, error) {
	i := slices.IndexFunc(c.Sections, func(s Section) bool { return s.ID == id })
	if i < 0 {
		return 0, fmt.Errorf("section %s: %w", id, apperr.ErrNotFound)
	}
	return i, nil
}

// SetNoteType changes the planning period of a note board.
func SetNoteType(nt string) Edit {
	return func(it *Item) error {
		c, err := noteBoard(it)
		if err != nil {
			return err
		}
		t := NoteType(nt)
		if !t.Valid() {
			return fmt.Errorf("%w: note type %q", apperr.ErrInvalid, nt)
		}
		c.NoteType = t
		return nil
	}
}

// SetDate changes the date label of a note board.
func SetDate(date string) Edit {
	return func(it *Item) error {
		c, err := noteBoard(it)
		if err != nil {
			return err
		}
		c.Date = date
		return nil
	}
}

// AddSection appends a section to a note board.
func AddSection(title string) Edit {
	return func(it *Item) error {
		c, err := noteBoard(it)
		if err != nil {
			return err
		}
		c.Sections = append(c.Sections, NewSection(title))
		return nil
	}
}

// SetSection replaces the title and content of one section.
func SetSection(sectionID, title, content string) Edit {
	return func(it *Item) error {
		c, err := noteBoard(it)
		if err != nil {
			return err
		}
		i, err := sectionIndex(c, sectionID)
		if err != nil {
			return err
		}
		c.Sections[i].Title = title
		c.Sections[i].Content = content
		return nil
	}
}

// RemoveSection deletes one section.
func RemoveSection(sectionID string) Edit {
	return func(it *Item) error {
		c, err := noteBoard(it)
		if err != nil {
			return err
		}
		i, err := sectionIndex(c, sectionID)
		if err != nil {
			return err
		}
		c.Sections = slices.Delete(c.Sections, i, i+1)
		return nil
	}
}
