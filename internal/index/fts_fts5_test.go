//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM projects_fts`).Scan(&count); err != nil {
		t.Fatalf("projects_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	p, _ := db.CreateProject("Launch plan", time.Now())
	if err := db.Touch(p.ID, 1, Summary{Body: "Corkboard keeps powerful sticky notes.", Tags: []string{"search"}}, "f1"); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ProjectID != p.ID || results[0].Name != "Launch plan" {
		t.Errorf("hit = %+v", results[0])
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_NameSearchableBeforeFirstSave(t *testing.T) {
	db := testDB(t)
	p, _ := db.CreateProject("Quarterly offsite", time.Now())
	results, _ := db.Search("offsite", 10)
	if len(results) != 1 || results[0].ProjectID != p.ID {
		t.Errorf("results = %+v", results)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	p, _ := db.CreateProject("gone", time.Now())
	_ = db.Touch(p.ID, 1, Summary{Body: "vanishing content"}, "g")
	_ = db.DeleteProject(p.ID)

	results, _ := db.Search("vanishing", 10)
	if len(results) != 0 {
		t.Errorf("deleted project still in FTS index: %+v", results)
	}
}

func TestFTS5_TouchAndRenameReplaceContent(t *testing.T) {
	db := testDB(t)
	p, _ := db.CreateProject("Old", time.Now())
	_ = db.Touch(p.ID, 1, Summary{Body: "original text"}, "1")
	_ = db.Touch(p.ID, 2, Summary{Body: "replacement text"}, "2")
	_ = db.RenameProject(p.ID, "New")

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Name != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
