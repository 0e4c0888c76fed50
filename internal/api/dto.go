package api

import (
	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/interaction"
	"github.com/starford/corkboard/internal/models"
	"github.com/starford/corkboard/internal/workspace"
)

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Name string `json:"name" example:"Q3 planning"`
}

// RenameProjectRequest is the request body for renaming a project.
type RenameProjectRequest struct {
	Name string `json:"name" example:"Q3 planning"`
}

// ProjectListResponse wraps paginated project listings.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total" example:"42"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchHit `json:"results"`
}

// PointerDownRequest starts a gesture. When Target is omitted the server
// hit-tests (X, Y) against the open board.
type PointerDownRequest struct {
	X        float64             `json:"x"`
	Y        float64             `json:"y"`
	Target   *interaction.Target `json:"target,omitempty"`
	Modifier bool                `json:"modifier,omitempty"`
}

// PointerDownResponse reports the mode entered and what was hit.
type PointerDownResponse struct {
	Mode   string             `json:"mode" example:"dragging"`
	Target interaction.Target `json:"target"`
}

// PointerMoveRequest is a pointer position in screen coordinates.
type PointerMoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WheelRequest is one wheel step anchored at a screen point.
type WheelRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Delta float64 `json:"delta" example:"-100"`
}

// CreateItemRequest places a new item centered under a screen point.
type CreateItemRequest struct {
	Type board.Kind `json:"type" example:"sticky"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
}

// UpdateItemRequest edits fields of an item. Position, when both X and Y are
// set, moves the item in world coordinates as a drag would.
type UpdateItemRequest struct {
	workspace.ItemPatch
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
	BringToFront bool     `json:"bringToFront,omitempty"`
}
