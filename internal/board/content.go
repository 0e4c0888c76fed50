package board

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/corkboard/internal/apperr"
	"github.com/starford/corkboard/internal/geom"
)

// Kind names an item variant. It is also the id prefix.
type Kind string

// Item kinds.
const (
	KindTaskList  Kind = "tasklist"
	KindNoteBoard Kind = "noteboard"
	KindSticky    Kind = "sticky"
	KindArrow     Kind = "arrow"
)

// Kinds lists every item kind in toolbar order.
var Kinds = []Kind{KindTaskList, KindNoteBoard, KindSticky, KindArrow}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("board: %w: unknown item type %q", apperr.ErrInvalid, s)
}

// Size is a width/height pair in world units.
type Size struct {
	W float64
	H float64
}

// placementHeight stands in for content-driven heights when centering a new
// item under the pointer and when measuring is not available.
const placementHeight = 200

// Content is the variant-specific part of an Item. Each operation that
// depends on the item type is a method here, so a new variant does not
// compile until it defines all of them.
type Content interface {
	Kind() Kind
	// DefaultSize is the size of a freshly created item.
	DefaultSize() (float64, Height)
	// ResizeFallback is the start size used by a resize gesture when the
	// item's height is content-driven.
	ResizeFallback() Size
	// Resize applies the variant's resize policy to a start size and a
	// world-space pointer delta.
	Resize(start Size, dx, dy float64) (float64, Height)
	// Refit recomputes derived geometry after a size change.
	Refit(w float64, h Height)
	// Strings returns the user-entered text, for search and measurement.
	Strings() []string

	encode(hdr header) ([]byte, error)
}

// NewContent returns the default content for kind. now supplies the date of
// a new note board; the zero time leaves it empty.
func NewContent(kind Kind, now time.Time) (Content, error) {
	switch kind {
	case KindTaskList:
		return &TaskList{Tasks: []Task{}}, nil
	case KindNoteBoard:
		nb := &NoteBoard{NoteType: NoteDaily, Sections: []Section{}}
		if !now.IsZero() {
			nb.Date = now.Format(time.DateOnly)
		}
		return nb, nil
	case KindSticky:
		return &StickyNote{Color: StickyYellow}, nil
	case KindArrow:
		return &Arrow{Color: "blue"}, nil
	}
	return nil, fmt.Errorf("board: %w: unknown item type %q", apperr.ErrInvalid, kind)
}

// Task is one checklist entry of a TaskList.
type Task struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// NewTask returns an unchecked task with a fresh id.
func NewTask(text string) Task {
	return Task{ID: uuid.NewString(), Text: text}
}

// TaskList is a titled checklist. Its height follows the number of tasks
// until the user resizes it.
type TaskList struct {
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

func (*TaskList) Kind() Kind                     { return KindTaskList }
func (*TaskList) DefaultSize() (float64, Height) { return 300, Auto() }
func (*TaskList) ResizeFallback() Size           { return Size{W: 250, H: 450} }
func (*TaskList) Refit(float64, Height)          {}

func (*TaskList) Resize(start Size, dx, dy float64) (float64, Height) {
	return max(50, start.W+dx), Fixed(max(100, start.H+dy))
}

func (t *TaskList) Strings() []string {
	out := []string{t.Title}
	for _, task := range t.Tasks {
		out = append(out, task.Text)
	}
	return out
}

func (t *TaskList) encode(hdr header) ([]byte, error) {
	return json.Marshal(struct {
		header
		*TaskList
	}{hdr, t})
}

// NoteType is the period a NoteBoard plans for.
type NoteType string

// Note board periods.
const (
	NoteDaily   NoteType = "daily"
	NoteWeekly  NoteType = "weekly"
	NoteMonthly NoteType = "monthly"
	NoteYearly  NoteType = "yearly"
)

// Valid reports whether n is one of the known periods.
func (n NoteType) Valid() bool {
	switch n {
	case NoteDaily, NoteWeekly, NoteMonthly, NoteYearly:
		return true
	}
	return false
}

// Section is a titled text block of a NoteBoard.
type Section struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NewSection returns an empty-bodied section with a fresh id.
func NewSection(title string) Section {
	return Section{ID: uuid.NewString(), Title: title}
}

// NoteBoard is a dated planning page split into sections.
type NoteBoard struct {
	Title    string    `json:"title"`
	NoteType NoteType  `json:"noteType"`
	Date     string    `json:"date"`
	Sections []Section `json:"sections"`
}

func (*NoteBoard) Kind() Kind                     { return KindNoteBoard }
func (*NoteBoard) DefaultSize() (float64, Height) { return 340, Fixed(450) }
func (*NoteBoard) ResizeFallback() Size           { return Size{W: 340, H: 450} }
func (*NoteBoard) Refit(float64, Height)          {}

func (*NoteBoard) Resize(start Size, dx, dy float64) (float64, Height) {
	return max(50, start.W+dx), Fixed(max(100, start.H+dy))
}

func (n *NoteBoard) Strings() []string {
	out := []string{n.Title}
	for _, s := range n.Sections {
		out = append(out, s.Title, s.Content)
	}
	return out
}

func (n *NoteBoard) encode(hdr header) ([]byte, error) {
	return json.Marshal(struct {
		header
		*NoteBoard
	}{hdr, n})
}

// StickyColor is the paper color of a StickyNote.
type StickyColor string

// Sticky note colors.
const (
	StickyYellow StickyColor = "yellow"
	StickyBlue   StickyColor = "blue"
	StickyGreen  StickyColor = "green"
	StickyPink   StickyColor = "pink"
)

// Valid reports whether c is one of the sticky palette colors.
func (c StickyColor) Valid() bool {
	switch c {
	case StickyYellow, StickyBlue, StickyGreen, StickyPink:
		return true
	}
	return false
}

// StickyNote is free text on colored paper. Its height always follows the text.
type StickyNote struct {
	Text  string      `json:"text"`
	Color StickyColor `json:"color"`
}

func (*StickyNote) Kind() Kind                     { return KindSticky }
func (*StickyNote) DefaultSize() (float64, Height) { return 250, Auto() }
func (*StickyNote) ResizeFallback() Size           { return Size{W: 250, H: 450} }
func (*StickyNote) Refit(float64, Height)          {}

func (*StickyNote) Resize(start Size, dx, _ float64) (float64, Height) {
	return max(200, start.W+dx), Auto()
}

func (s *StickyNote) Strings() []string { return []string{s.Text} }

func (s *StickyNote) encode(hdr header) ([]byte, error) {
	return json.Marshal(struct {
		header
		*StickyNote
	}{hdr, s})
}

// Arrow is a block arrow shape. Its outline is derived from the item size.
type Arrow struct {
	Color string `json:"color"`

	path geom.Polygon
}

func (*Arrow) Kind() Kind                     { return KindArrow }
func (*Arrow) DefaultSize() (float64, Height) { return 200, Fixed(60) }
func (*Arrow) ResizeFallback() Size           { return Size{W: 250, H: 450} }
func (*Arrow) Strings() []string              { return nil }

func (*Arrow) Resize(start Size, dx, dy float64) (float64, Height) {
	return max(50, start.W+dx), Fixed(max(30, start.H+dy))
}

// Refit recomputes the outline.
func (a *Arrow) Refit(w float64, h Height) {
	a.path = geom.ArrowPath(w, h.Or(60))
}

// Path returns the outline computed by the last Refit.
func (a *Arrow) Path() geom.Polygon { return a.path }

func (a *Arrow) encode(hdr header) ([]byte, error) {
	return json.Marshal(struct {
		header
		*Arrow
	}{hdr, a})
}
