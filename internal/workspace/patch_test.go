package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/starford/corkboard/internal/apperr"
	"github.com/starford/corkboard/internal/board"
)

func TestItemPatchEmpty(t *testing.T) {
	var p ItemPatch
	if !p.Empty() {
		t.Error("zero patch should be empty")
	}
	if err := json.Unmarshal([]byte(`{"title":"Plan"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Empty() {
		t.Error("title patch reported empty")
	}
}

func TestItemPatchTaskList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.open(t, "Board")
	it, err := f.ws.CreateItem(ctx, board.KindTaskList, 300, 300)
	if err != nil {
		t.Fatal(err)
	}
	first := it.Content.(*board.TaskList).Tasks[0].ID

	var p ItemPatch
	raw := `{"title":"Release","addTasks":["tag build","write notes"],
		"tasks":[{"id":"` + first + `","text":"freeze #release","checked":true}]}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatal(err)
	}
	got, err := f.ws.Edit(ctx, it.ID, p.Edits()...)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	tl := got.Content.(*board.TaskList)
	if tl.Title != "Release" || len(tl.Tasks) != 3 {
		t.Fatalf("task list = %+v", tl)
	}
	if tl.Tasks[0].Text != "freeze #release" || !tl.Tasks[0].Checked {
		t.Errorf("first task = %+v", tl.Tasks[0])
	}

	remove := ItemPatch{Tasks: []TaskPatch{{ID: tl.Tasks[1].ID, Remove: true}}}
	got, err = f.ws.Edit(ctx, it.ID, remove.Edits()...)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(got.Content.(*board.TaskList).Tasks); n != 2 {
		t.Errorf("tasks after remove = %d", n)
	}
}

func TestItemPatchNoteBoard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.open(t, "Board")
	it, _ := f.ws.CreateItem(ctx, board.KindNoteBoard, 300, 300)
	sec := it.Content.(*board.NoteBoard).Sections[0].ID

	nt, date := "weekly", "2026-W10"
	p := ItemPatch{
		NoteType:    &nt,
		Date:        &date,
		AddSections: []string{"Risks"},
		Sections:    []SectionPatch{{ID: sec, Title: "Goals", Content: "ship"}},
	}
	got, err := f.ws.Edit(ctx, it.ID, p.Edits()...)
	if err != nil {
		t.Fatal(err)
	}
	nb := got.Content.(*board.NoteBoard)
	if nb.NoteType != board.NoteWeekly || nb.Date != date || len(nb.Sections) != 2 {
		t.Fatalf("note board = %+v", nb)
	}
	if nb.Sections[0].Title != "Goals" || nb.Sections[1].Title != "Risks" {
		t.Errorf("sections = %+v", nb.Sections)
	}

	bad := "fortnightly"
	if _, err := f.ws.Edit(ctx, it.ID, ItemPatch{NoteType: &bad}.Edits()...); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("invalid note type: %v", err)
	}
}
