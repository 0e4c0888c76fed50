// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Corkboard tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/index"
	"github.com/starford/corkboard/internal/workspace"
)

// SnapshotFormatURI is the resource holding SnapshotFormatContract.
const SnapshotFormatURI = "corkboard://snapshot-format"

// Server wraps the MCP server with Corkboard tools.
type Server struct {
	mcp    *server.MCPServer
	idx    index.ProjectIndex
	ws     *workspace.Workspace
	notify func(kind, projectID string)
	now    func() time.Time
}

// New creates a new MCP server with all Corkboard tools registered. notify
// may be nil.
func New(idx index.ProjectIndex, ws *workspace.Workspace, notify func(kind, projectID string)) *Server {
	if notify == nil {
		notify = func(string, string) {}
	}
	s := &Server{idx: idx, ws: ws, notify: notify, now: time.Now}

	s.mcp = server.NewMCPServer(
		"Corkboard",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List projects, most recently modified first."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
		mcp.WithString("tag", mcp.Description("Only projects carrying this #tag (without the #)")),
		mcp.WithString("sort", mcp.Description("last_modified or name")),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create an empty project."),
		mcp.WithString("name", mcp.Description("Project name (default Untitled)")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("open_project",
		mcp.WithDescription("Open a project on the shared canvas. The project open before is saved first."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
	), s.openProject)

	s.mcp.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Return the snapshot of the open project. Read the "+SnapshotFormatURI+
			" resource or call get_snapshot_format for the field reference."),
	), s.getBoard)

	s.mcp.AddTool(mcp.NewTool("get_snapshot_format",
		mcp.WithDescription("Returns the snapshot format reference: coordinates, item types and edit patches."),
	), s.getSnapshotFormat)

	s.mcp.AddTool(mcp.NewTool("create_item",
		mcp.WithDescription("Create an item on the open project, centered under a screen point."),
		mcp.WithString("type", mcp.Required(), mcp.Description("tasklist, noteboard, sticky or arrow")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Screen X")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Screen Y")),
	), s.createItem)

	s.mcp.AddTool(mcp.NewTool("delete_item",
		mcp.WithDescription("Remove an item from the open project."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id, e.g. sticky-3")),
	), s.deleteItem)

	s.mcp.AddTool(mcp.NewTool("move_item",
		mcp.WithDescription("Drag an item so its top-left corner lands on a world point. The item is raised to the top."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("World X")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("World Y")),
	), s.moveItem)

	s.mcp.AddTool(mcp.NewTool("edit_item",
		mcp.WithDescription("Edit item fields with a JSON patch (see the snapshot format)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
		mcp.WithString("patchJSON", mcp.Required(), mcp.Description(`JSON patch, e.g. {"text":"hi","color":"pink"}`)),
	), s.editItem)

	s.mcp.AddTool(mcp.NewTool("search_projects",
		mcp.WithDescription("Full-text search through project names and item text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchProjects)

	s.mcp.AddResource(
		mcp.NewResource(SnapshotFormatURI, "Snapshot Format",
			mcp.WithResourceDescription("Board snapshot fields, coordinates and edit patches."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSnapshotFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listProjects(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, total, err := s.idx.ListProjects(
		req.GetInt("limit", 0),
		req.GetInt("offset", 0),
		strings.TrimPrefix(req.GetString("tag", ""), "#"),
		req.GetString("sort", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"projects": projects, "total": total})
}

func (s *Server) createProject(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.idx.CreateProject(req.GetString("name", ""), s.now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.notify(index.EventCreated, p.ID)
	return jsonResult(p)
}

func (s *Server) openProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ws.Open(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.getBoard(ctx, req)
}

func (s *Server) getBoard(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.ws.Snapshot()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (s *Server) getSnapshotFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SnapshotFormatContract), nil
}

func (s *Server) createItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := board.ParseKind(typ)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := req.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := req.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	it, err := s.ws.CreateItem(ctx, kind, x, y)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(it)
}

func (s *Server) deleteItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ws.DeleteItem(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) moveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := req.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := req.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	it, err := s.ws.MoveItem(ctx, id, x, y)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(it)
}

func (s *Server) editItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("patchJSON")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var patch workspace.ItemPatch
	if err := json.Unmarshal([]byte(raw), &patch); err != nil {
		return mcp.NewToolResultError("invalid patchJSON: " + err.Error()), nil
	}
	if patch.Empty() {
		return mcp.NewToolResultError("patch has no changes"), nil
	}
	it, err := s.ws.Edit(ctx, id, patch.Edits()...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(it)
}

func (s *Server) searchProjects(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.idx.Search(query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	return jsonResult(results)
}

func (s *Server) readSnapshotFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SnapshotFormatURI,
			MIMEType: "text/markdown",
			Text:     SnapshotFormatContract,
		},
	}, nil
}
