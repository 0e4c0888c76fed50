package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(d Deps, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Post("/", h.CreateProject)
		r.Get("/{id}", h.GetProject)
		r.Patch("/{id}", h.RenameProject)
		r.Delete("/{id}", h.DeleteProject)
		r.Post("/{id}/open", h.OpenProject)
		r.Get("/{id}/export.png", h.ExportProject)
	})

	r.Get("/search", h.Search)

	r.Route("/workspace", func(r chi.Router) {
		r.Get("/", h.GetWorkspace)
		r.Post("/close", h.CloseWorkspace)
		r.Post("/pointer/down", h.PointerDown)
		r.Post("/pointer/move", h.PointerMove)
		r.Post("/pointer/up", h.PointerUp)
		r.Post("/wheel", h.Wheel)
		r.Post("/items", h.CreateItem)
		r.Patch("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.DeleteItem)
		r.Get("/export.png", h.ExportWorkspace)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
