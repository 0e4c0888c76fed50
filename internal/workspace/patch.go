package workspace

import "github.com/starford/corkboard/internal/board"

// TaskPatch edits one task of a task list.
type TaskPatch struct {
	ID      string  `json:"id"`
	Text    *string `json:"text,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
	Remove  bool    `json:"remove,omitempty"`
}

// SectionPatch replaces or removes one note board section.
type SectionPatch struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Remove  bool   `json:"remove,omitempty"`
}

// ItemPatch is a batch of field edits in wire form. Nil fields are left
// alone. Edits apply in field order: scalar fields, then tasks, then
// sections.
type ItemPatch struct {
	Title       *string        `json:"title,omitempty"`
	Text        *string        `json:"text,omitempty"`
	Color       *string        `json:"color,omitempty"`
	NoteType    *string        `json:"noteType,omitempty"`
	Date        *string        `json:"date,omitempty"`
	AddTasks    []string       `json:"addTasks,omitempty"`
	Tasks       []TaskPatch    `json:"tasks,omitempty"`
	AddSections []string       `json:"addSections,omitempty"`
	Sections    []SectionPatch `json:"sections,omitempty"`
}

// Edits converts the patch to board edits.
func (p ItemPatch) Edits() []board.Edit {
	var out []board.Edit
	if p.Title != nil {
		out = append(out, board.SetTitle(*p.Title))
	}
	if p.Text != nil {
		out = append(out, board.SetText(*p.Text))
	}
	if p.Color != nil {
		out = append(out, board.SetColor(*p.Color))
	}
	if p.NoteType != nil {
		out = append(out, board.SetNoteType(*p.NoteType))
	}
	if p.Date != nil {
		out = append(out, board.SetDate(*p.Date))
	}
	for _, text := range p.AddTasks {
		out = append(out, board.AddTask(text))
	}
	for _, t := range p.Tasks {
		if t.Remove {
			out = append(out, board.RemoveTask(t.ID))
			continue
		}
		if t.Text != nil {
			out = append(out, board.SetTaskText(t.ID, *t.Text))
		}
		if t.Checked != nil {
			out = append(out, board.SetTaskChecked(t.ID, *t.Checked))
		}
	}
	for _, title := range p.AddSections {
		out = append(out, board.AddSection(title))
	}
	for _, s := range p.Sections {
		if s.Remove {
			out = append(out, board.RemoveSection(s.ID))
		} else {
			out = append(out, board.SetSection(s.ID, s.Title, s.Content))
		}
	}
	return out
}

// Empty reports whether the patch carries no edits.
func (p ItemPatch) Empty() bool { return len(p.Edits()) == 0 }
