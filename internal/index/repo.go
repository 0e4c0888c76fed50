package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/corkboard/internal/apperr"
	"github.com/starford/corkboard/internal/models"
)

// DefaultProjectName names projects first seen through their snapshot.
const DefaultProjectName = "Untitled"

// Sort orders accepted by ListProjects.
const (
	SortLastModified = "last_modified"
	SortName         = "name"
)

// CreateProject adds an empty project with a fresh id.
func (db *DB) CreateProject(name string, now time.Time) (models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultProjectName
	}
	p := models.Project{
		ID:           uuid.NewString(),
		Name:         name,
		LastModified: now.UnixMilli(),
		Tags:         []string{},
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return models.Project{}, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`INSERT INTO projects (id, name, last_modified) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.LastModified)
	if err != nil {
		return models.Project{}, fmt.Errorf("index: create project: %w", err)
	}
	if err := ftsUpsert(tx, p.ID, p.Name, "", nil); err != nil {
		return models.Project{}, err
	}
	return p, tx.Commit()
}

func scanProject(row interface{ Scan(...any) error }) (models.Project, error) {
	var (
		p    models.Project
		tags string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.LastModified, &p.ItemCount, &tags); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil || p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

// GetProject returns one project or an error wrapping apperr.ErrNotFound.
func (db *DB) GetProject(id string) (*models.Project, error) {
	p, err := scanProject(db.conn.QueryRow(
		`SELECT id, name, last_modified, item_count, tags FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns a page of projects and the total matching count. tag
// filters on an exact tag; sort is SortLastModified (newest first, default)
// or SortName.
func (db *DB) ListProjects(limit, offset int, tag, sort string) ([]models.Project, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where, args := "", []any{}
	if tag != "" {
		tagJSON, _ := json.Marshal(tag)
		where = `WHERE tags LIKE ?`
		args = append(args, "%"+string(tagJSON)+"%")
	}
	order := `last_modified DESC, name`
	if sort == SortName {
		order = `name COLLATE NOCASE, last_modified DESC`
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM projects `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count projects: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT id, name, last_modified, item_count, tags
		FROM projects `+where+`
		ORDER BY `+order+`
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list projects: %w", err)
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// RenameProject changes the display name of a project.
func (db *DB) RenameProject(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty project name", apperr.ErrInvalid)
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`UPDATE projects SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("index: rename project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", id, apperr.ErrNotFound)
	}
	var body string
	var tags string
	if err := tx.QueryRow(`SELECT body, tags FROM projects WHERE id = ?`, id).Scan(&body, &tags); err != nil {
		return fmt.Errorf("index: read project %s: %w", id, err)
	}
	var tagList []string
	if err := json.Unmarshal([]byte(tags), &tagList); err != nil {
		return fmt.Errorf("index: decode tags of %s: %w", id, err)
	}
	if err := ftsUpsert(tx, id, name, body, tagList); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteProject removes a project and its search entry. Deleting an unknown
// id is not an error.
func (db *DB) DeleteProject(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete project: %w", err)
	}
	return tx.Commit()
}

// Touch records a save: the modification time, the item count, the
// searchable text and the checksum of the stored snapshot. Unknown ids are
// inserted under DefaultProjectName.
func (db *DB) Touch(id string, modifiedMillis int64, sum Summary, checksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := sum.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO projects (id, name, last_modified, item_count, checksum, tags, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_modified = excluded.last_modified,
			item_count    = excluded.item_count,
			checksum      = excluded.checksum,
			tags          = excluded.tags,
			body          = excluded.body
	`, id, DefaultProjectName, modifiedMillis, sum.ItemCount, checksum, string(tagsJSON), sum.Body)
	if err != nil {
		return fmt.Errorf("index: touch project: %w", err)
	}

	var name string
	if err := tx.QueryRow(`SELECT name FROM projects WHERE id = ?`, id).Scan(&name); err != nil {
		return fmt.Errorf("index: touch project: %w", err)
	}
	if err := ftsUpsert(tx, id, name, sum.Body, tags); err != nil {
		return err
	}
	return tx.Commit()
}

// AllChecksums returns the recorded snapshot checksum of every project.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
