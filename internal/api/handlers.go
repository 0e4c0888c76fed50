package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/corkboard/internal/apperr"
	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/index"
	"github.com/starford/corkboard/internal/models"
	"github.com/starford/corkboard/internal/persistence"
	"github.com/starford/corkboard/internal/render"
	"github.com/starford/corkboard/internal/workspace"
)

// Deps are the collaborators the handlers work against.
type Deps struct {
	Index     index.ProjectIndex
	Gateway   *persistence.Gateway
	Workspace *workspace.Workspace
	// Notify, if set, is told about project lifecycle changes.
	Notify func(kind, projectID string)
	Export render.Options
	Now    func() time.Time
}

// Handler holds API route handlers.
type Handler struct {
	Deps
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notify == nil {
		d.Notify = func(string, string) {}
	}
	return &Handler{Deps: d}
}

// ListProjects handles GET /api/projects.
//
//	@Summary		List projects with optional pagination and filtering
//	@Tags			projects
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			sort	query		string	false	"Sort field"	Enums(last_modified, name)
//	@Success		200		{object}	ProjectListResponse
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	projects, total, err := h.Index.ListProjects(limit, offset, q.Get("tag"), q.Get("sort"))
	if err != nil {
		writeError(w, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: projects, Total: total})
}

// CreateProject handles POST /api/projects.
//
//	@Summary		Create an empty project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateProjectRequest	false	"Project name"
//	@Success		201		{object}	models.Project
//	@Security		BearerAuth
//	@Router			/projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Index.CreateProject(req.Name, h.Now())
	if err != nil {
		writeError(w, "create project", err)
		return
	}
	h.Notify(index.EventCreated, p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /api/projects/{id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Index.GetProject(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get project", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RenameProject handles PATCH /api/projects/{id}.
func (h *Handler) RenameProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req RenameProjectRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Index.RenameProject(id, req.Name); err != nil {
		writeError(w, "rename project", err)
		return
	}
	p, err := h.Index.GetProject(id)
	if err != nil {
		writeError(w, "rename project", err)
		return
	}
	h.Notify(index.EventUpdated, id)
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{id}.
//
//	@Summary		Delete a project and its snapshot
//	@Tags			projects
//	@Param			id	path	string	true	"Project id"
//	@Success		204	"Project deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [delete]
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Index.GetProject(id); err != nil {
		writeError(w, "delete project", err)
		return
	}
	h.Workspace.Discard(id)
	if err := h.Gateway.Delete(r.Context(), id); err != nil {
		writeError(w, "delete project", err)
		return
	}
	if err := h.Index.DeleteProject(id); err != nil {
		writeError(w, "delete project", err)
		return
	}
	h.Notify(index.EventDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// ExportProject handles GET /api/projects/{id}/export.png. It renders the
// stored snapshot, not the live one.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Index.GetProject(id); err != nil {
		writeError(w, "export project", err)
		return
	}
	snap, err := h.Gateway.Load(r.Context(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		snap, err = board.NewSnapshot(), nil
	}
	if err != nil {
		writeError(w, "export project", err)
		return
	}
	h.writePNG(w, r, snap)
}

func (h *Handler) writePNG(w http.ResponseWriter, r *http.Request, snap *board.Snapshot) {
	opts := h.Export
	if v, err := strconv.ParseFloat(r.URL.Query().Get("scale"), 64); err == nil && v > 0 && v <= 4 {
		opts.Scale = v
	}
	w.Header().Set("Content-Type", "image/png")
	if err := render.WritePNG(w, snap, opts); err != nil {
		slog.Error("png export failed", slog.String("error", err.Error()))
	}
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across project contents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.Index.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []models.SearchHit{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
