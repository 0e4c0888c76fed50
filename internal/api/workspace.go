package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/corkboard/internal/geom"
	"github.com/starford/corkboard/internal/interaction"
	"github.com/starford/corkboard/internal/workspace"
)

// OpenProject handles POST /api/projects/{id}/open. The previously open
// project is saved first.
func (h *Handler) OpenProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.Open(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "open project", err)
		return
	}
	h.GetWorkspace(w, r)
}

// CloseWorkspace handles POST /api/workspace/close.
func (h *Handler) CloseWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.Close(r.Context()); err != nil {
		writeError(w, "close workspace", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWorkspace handles GET /api/workspace.
func (h *Handler) GetWorkspace(w http.ResponseWriter, _ *http.Request) {
	st, err := h.Workspace.Snapshot()
	if err != nil {
		writeError(w, "get workspace", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// PointerDown handles POST /api/workspace/pointer/down.
func (h *Handler) PointerDown(w http.ResponseWriter, r *http.Request) {
	var req PointerDownRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		mode   interaction.Mode
		target interaction.Target
		err    error
	)
	if req.Target != nil {
		target = *req.Target
		mode, err = h.Workspace.PointerDown(interaction.Pointer{
			X: req.X, Y: req.Y, Target: target, Modifier: req.Modifier,
		})
	} else {
		mode, target, err = h.Workspace.PointerDownAt(req.X, req.Y, req.Modifier)
	}
	if err != nil {
		writeError(w, "pointer down", err)
		return
	}
	writeJSON(w, http.StatusOK, PointerDownResponse{Mode: mode.String(), Target: target})
}

// PointerMove handles POST /api/workspace/pointer/move.
func (h *Handler) PointerMove(w http.ResponseWriter, r *http.Request) {
	var req PointerMoveRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Workspace.PointerMove(req.X, req.Y); err != nil {
		writeError(w, "pointer move", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PointerUp handles POST /api/workspace/pointer/up.
func (h *Handler) PointerUp(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.PointerUp(r.Context()); err != nil {
		writeError(w, "pointer up", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Wheel handles POST /api/workspace/wheel.
func (h *Handler) Wheel(w http.ResponseWriter, r *http.Request) {
	var req WheelRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.Workspace.Wheel(req.X, req.Y, req.Delta)
	if err != nil {
		writeError(w, "wheel", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// CreateItem handles POST /api/workspace/items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.Workspace.CreateItem(r.Context(), req.Type, req.X, req.Y)
	if err != nil {
		writeError(w, "create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// DeleteItem handles DELETE /api/workspace/items/{id}. Deleting an absent
// item succeeds.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateItem handles PATCH /api/workspace/items/{id}: field edits, then a
// move, then raising, applied as one action with a single save.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateItemRequest
	if !decode(w, r, &req) {
		return
	}
	if (req.X == nil) != (req.Y == nil) {
		writeJSON(w, http.StatusBadRequest, errorBody("x and y must be given together"))
		return
	}
	if req.Empty() && req.X == nil && !req.BringToFront {
		writeJSON(w, http.StatusBadRequest, errorBody("no changes given"))
		return
	}

	u := workspace.Change{Raise: req.BringToFront}
	if !req.Empty() {
		u.Edits = req.Edits()
	}
	if req.X != nil {
		u.Move = &geom.Point{X: *req.X, Y: *req.Y}
	}
	if _, err := h.Workspace.Update(r.Context(), id, u); err != nil {
		writeError(w, "update item", err)
		return
	}

	st, err := h.Workspace.Snapshot()
	if err != nil {
		writeError(w, "update item", err)
		return
	}
	it := st.Snapshot.Items.Get(id)
	if it == nil {
		writeError(w, "update item", errors.New("item vanished after update"))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// ExportWorkspace handles GET /api/workspace/export.png and renders the live
// board, unsaved viewport changes included.
func (h *Handler) ExportWorkspace(w http.ResponseWriter, r *http.Request) {
	st, err := h.Workspace.Snapshot()
	if err != nil {
		writeError(w, "export workspace", err)
		return
	}
	h.writePNG(w, r, st.Snapshot)
}
