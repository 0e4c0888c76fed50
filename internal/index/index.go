package index

import (
	"time"

	"github.com/starford/corkboard/internal/models"
)

// ProjectIndex is the set of index operations used by the workspace and the
// control surfaces.
type ProjectIndex interface {
	CreateProject(name string, now time.Time) (models.Project, error)
	GetProject(id string) (*models.Project, error)
	ListProjects(limit, offset int, tag, sort string) ([]models.Project, int, error)
	RenameProject(id, name string) error
	DeleteProject(id string) error
	Touch(id string, modifiedMillis int64, sum Summary, checksum string) error
	Search(query string, limit int) ([]models.SearchHit, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies ProjectIndex at compile time.
var _ ProjectIndex = (*DB)(nil)
