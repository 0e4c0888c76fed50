//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/corkboard/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS projects_fts USING fts5(
			id UNINDEXED,
			name,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, name, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO projects_fts (id, name, body, tags) VALUES (?, ?, ?, ?)`,
		id, name, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE id = ?`, id)
}

// Search performs an FTS5 full-text search and returns matching projects with snippets.
func (db *DB) Search(query string, limit int) ([]models.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       name,
		       snippet(projects_fts, 2, '<b>', '</b>', '...', 32)
		FROM projects_fts
		WHERE projects_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []models.SearchHit{}
	for rows.Next() {
		var r models.SearchHit
		if err := rows.Scan(&r.ProjectID, &r.Name, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
