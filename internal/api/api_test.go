package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/corkboard/internal/index"
	"github.com/starford/corkboard/internal/models"
	"github.com/starford/corkboard/internal/persistence"
	"github.com/starford/corkboard/internal/render"
	"github.com/starford/corkboard/internal/testutil"
	"github.com/starford/corkboard/internal/workspace"
)

type testEnv struct {
	db     *index.DB
	gw     *persistence.Gateway
	ws     *workspace.Workspace
	router http.Handler

	mu       sync.Mutex
	notified []string
}

func newEnv(t *testing.T, token string) *testEnv {
	t.Helper()
	return newEnvWithSSE(t, token, nil)
}

func newEnvWithSSE(t *testing.T, token string, sse http.Handler) *testEnv {
	t.Helper()
	_, gw := testutil.TestStore(t)
	env := &testEnv{db: testutil.TestDB(t), gw: gw}
	env.ws = workspace.New(gw, env.db)
	env.router = NewRouter(Deps{
		Index:     env.db,
		Gateway:   gw,
		Workspace: env.ws,
		Notify: func(kind, id string) {
			env.mu.Lock()
			env.notified = append(env.notified, kind+":"+id)
			env.mu.Unlock()
		},
		Export: render.DefaultOptions,
	}, token != "", token, sse)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func (e *testEnv) createProject(t *testing.T, name string) models.Project {
	t.Helper()
	w := e.do(t, http.MethodPost, "/projects", map[string]string{"name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	return decodeBody[models.Project](t, w)
}

func (e *testEnv) openProject(t *testing.T, name string) models.Project {
	t.Helper()
	p := e.createProject(t, name)
	if w := e.do(t, http.MethodPost, "/projects/"+p.ID+"/open", nil); w.Code != http.StatusOK {
		t.Fatalf("open status = %d, body = %s", w.Code, w.Body.String())
	}
	return p
}

type itemJSON struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     int     `json:"z"`
	Text  string  `json:"text"`
	Color string  `json:"color"`
}

func (e *testEnv) createItem(t *testing.T, kind string, x, y float64) itemJSON {
	t.Helper()
	w := e.do(t, http.MethodPost, "/workspace/items", map[string]any{"type": kind, "x": x, "y": y})
	if w.Code != http.StatusCreated {
		t.Fatalf("create item status = %d, body = %s", w.Code, w.Body.String())
	}
	return decodeBody[itemJSON](t, w)
}

type stateJSON struct {
	ProjectID string `json:"projectId"`
	Mode      string `json:"mode"`
	Snapshot  struct {
		Items  []itemJSON `json:"items"`
		Scale  float64    `json:"scale"`
		NextID int        `json:"nextId"`
	} `json:"snapshot"`
}

func (s stateJSON) item(id string) *itemJSON {
	for i := range s.Snapshot.Items {
		if s.Snapshot.Items[i].ID == id {
			return &s.Snapshot.Items[i]
		}
	}
	return nil
}

func (e *testEnv) state(t *testing.T) stateJSON {
	t.Helper()
	w := e.do(t, http.MethodGet, "/workspace", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("workspace status = %d, body = %s", w.Code, w.Body.String())
	}
	return decodeBody[stateJSON](t, w)
}

func TestCreateAndGetProject(t *testing.T) {
	env := newEnv(t, "")
	p := env.createProject(t, "Roadmap")
	if p.ID == "" || p.Name != "Roadmap" || p.LastModified == 0 {
		t.Fatalf("created = %+v", p)
	}

	w := env.do(t, http.MethodGet, "/projects/"+p.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if got := decodeBody[models.Project](t, w); got.Name != "Roadmap" {
		t.Errorf("name = %q", got.Name)
	}
	if env.notified[0] != "created:"+p.ID {
		t.Errorf("notified = %v", env.notified)
	}
}

func TestCreateProjectDefaultName(t *testing.T) {
	env := newEnv(t, "")
	w := env.do(t, http.MethodPost, "/projects", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if p := decodeBody[models.Project](t, w); p.Name != index.DefaultProjectName {
		t.Errorf("name = %q", p.Name)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	env := newEnv(t, "")
	if w := env.do(t, http.MethodGet, "/projects/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListProjects(t *testing.T) {
	env := newEnv(t, "")
	env.createProject(t, "b")
	env.createProject(t, "a")

	w := env.do(t, http.MethodGet, "/projects?sort=name", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeBody[ProjectListResponse](t, w)
	if resp.Total != 2 || len(resp.Projects) != 2 || resp.Projects[0].Name != "a" {
		t.Errorf("list = %+v", resp)
	}
}

func TestRenameProject(t *testing.T) {
	env := newEnv(t, "")
	p := env.createProject(t, "old")

	w := env.do(t, http.MethodPatch, "/projects/"+p.ID, map[string]string{"name": "new"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decodeBody[models.Project](t, w); got.Name != "new" {
		t.Errorf("name = %q", got.Name)
	}

	if w := env.do(t, http.MethodPatch, "/projects/"+p.ID, map[string]string{"name": "  "}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank name = %d, want 422", w.Code)
	}
	if w := env.do(t, http.MethodPatch, "/projects/missing", map[string]string{"name": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("missing = %d, want 404", w.Code)
	}
}

func TestDeleteOpenProject(t *testing.T) {
	env := newEnv(t, "")
	p := env.openProject(t, "doomed")
	env.createItem(t, "sticky", 100, 100)

	if w := env.do(t, http.MethodDelete, "/projects/"+p.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}
	if _, ok := env.ws.Current(); ok {
		t.Error("deleted project still open")
	}
	if _, _, err := env.gw.Raw(context.Background(), p.ID); err == nil {
		t.Error("snapshot survived delete")
	}
	if w := env.do(t, http.MethodGet, "/projects/"+p.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/projects/"+p.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	env := newEnv(t, "")
	p := env.openProject(t, "Launch")
	it := env.createItem(t, "sticky", 100, 100)
	w := env.do(t, http.MethodPatch, "/workspace/items/"+it.ID, map[string]string{"text": "book the rocketship #launch"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d, body = %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/search?q=rocketship", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	resp := decodeBody[SearchResponse](t, w)
	if len(resp.Results) != 1 || resp.Results[0].ProjectID != p.ID {
		t.Errorf("results = %+v", resp.Results)
	}

	w = env.do(t, http.MethodGet, "/search?q=nothing-matches-this", nil)
	if !strings.Contains(w.Body.String(), `"results":[]`) {
		t.Errorf("empty search body = %s", w.Body.String())
	}
}

func TestSearchMissingQuery(t *testing.T) {
	env := newEnv(t, "")
	if w := env.do(t, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestWorkspaceWithoutProject(t *testing.T) {
	env := newEnv(t, "")
	if w := env.do(t, http.MethodGet, "/workspace", nil); w.Code != http.StatusConflict {
		t.Errorf("get = %d, want 409", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/workspace/wheel", map[string]float64{"delta": 100}); w.Code != http.StatusConflict {
		t.Errorf("wheel = %d, want 409", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/workspace/close", nil); w.Code != http.StatusNoContent {
		t.Errorf("close = %d, want 204", w.Code)
	}
}

func TestOpenMissingProject(t *testing.T) {
	env := newEnv(t, "")
	if w := env.do(t, http.MethodPost, "/projects/missing/open", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDragViaHitTest(t *testing.T) {
	env := newEnv(t, "")
	env.openProject(t, "Board")
	it := env.createItem(t, "sticky", 300, 300)
	if it.ID != "sticky-1" {
		t.Fatalf("id = %s", it.ID)
	}

	w := env.do(t, http.MethodPost, "/workspace/pointer/down", map[string]float64{"x": it.X + 10, "y": it.Y + 5})
	if w.Code != http.StatusOK {
		t.Fatalf("down = %d, body = %s", w.Code, w.Body.String())
	}
	down := decodeBody[PointerDownResponse](t, w)
	if down.Mode != "dragging" || down.Target.ItemID != it.ID {
		t.Fatalf("down = %+v", down)
	}
	if s := env.state(t); s.Mode != "dragging" {
		t.Errorf("mode mid-gesture = %s", s.Mode)
	}

	if w := env.do(t, http.MethodPost, "/workspace/pointer/move", map[string]float64{"x": it.X + 30, "y": it.Y + 15}); w.Code != http.StatusNoContent {
		t.Fatalf("move = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/workspace/pointer/up", nil); w.Code != http.StatusNoContent {
		t.Fatalf("up = %d", w.Code)
	}

	got := env.state(t).item(it.ID)
	if got.X != it.X+20 || got.Y != it.Y+10 {
		t.Errorf("item at (%v,%v)", got.X, got.Y)
	}
}

func TestPointerDownExplicitTarget(t *testing.T) {
	env := newEnv(t, "")
	env.openProject(t, "Board")
	it := env.createItem(t, "arrow", 300, 300)

	body := `{"x":0,"y":0,"target":{"itemId":"` + it.ID + `","part":"resize-handle"}}`
	w := env.do(t, http.MethodPost, "/workspace/pointer/down", body)
	if w.Code != http.StatusOK {
		t.Fatalf("down = %d, body = %s", w.Code, w.Body.String())
	}
	if down := decodeBody[PointerDownResponse](t, w); down.Mode != "resizing" {
		t.Errorf("mode = %s", down.Mode)
	}

	bad := `{"x":0,"y":0,"target":{"part":"elbow"}}`
	if w := env.do(t, http.MethodPost, "/workspace/pointer/down", bad); w.Code != http.StatusBadRequest {
		t.Errorf("unknown part = %d, want 400", w.Code)
	}
}

func TestWheel(t *testing.T) {
	env := newEnv(t, "")
	env.openProject(t, "Board")
	w := env.do(t, http.MethodPost, "/workspace/wheel", map[string]float64{"x": 100, "y": 100, "delta": -500})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	v := decodeBody[struct {
		Pan   struct{ X, Y float64 } `json:"pan"`
		Scale float64                `json:"scale"`
	}](t, w)
	if v.Scale != 1.5 || v.Pan.X != -50 || v.Pan.Y != -50 {
		t.Errorf("viewport = %+v", v)
	}
}

func TestCreateItemUnknownType(t *testing.T) {
	env := newEnv(t, "")
	env.openProject(t, "Board")
	w := env.do(t, http.MethodPost, "/workspace/items", map[string]any{"type": "hexagon"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown type = %d, want 422", w.Code)
	}
}

func TestUpdateItem(t *testing.T) {
	env := newEnv(t, "")
	env.openProject(t, "Board")
	a := env.createItem(t, "sticky", 100, 100)
	b := env.createItem(t, "sticky", 200, 200)

	w := env.do(t, http.MethodPatch, "/workspace/items/"+a.ID, map[string]any{
		"text": "hello", "color": "blue", "x": 40, "y": 50,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d, body = %s", w.Code, w.Body.String())
	}
	got := decodeBody[itemJSON](t, w)
	if got.Text != "hello" || got.Color != "blue" || got.X != 40 || got.Y != 50 {
		t.Errorf("patched = %+v", got)
	}
	if got.Z <= b.Z {
		t.Errorf("moved item z %d not above %d", got.Z, b.Z)
	}

	w = env.do(t, http.MethodPatch, "/workspace/items/"+b.ID, map[string]any{"bringToFront": true})
	if w.Code != http.StatusOK {
		t.Fatalf("raise = %d", w.Code)
	}
	if decodeBody[itemJSON](t, w).Z <= got.Z {
		t.Error("bringToFront did not raise")
	}
}

func TestUpdateItemErrors(t *testing.T) {
	env := newEnv(t, "")
	env.openProject(t, "Board")
	it := env.createItem(t, "sticky", 100, 100)
	path := "/workspace/items/" + it.ID

	cases := []struct {
		name string
		body any
		want int
	}{
		{"wrong kind", map[string]string{"title": "x"}, http.StatusUnprocessableEntity},
		{"bad color", map[string]string{"color": "plaid"}, http.StatusUnprocessableEntity},
		{"x without y", map[string]float64{"x": 1}, http.StatusBadRequest},
		{"no changes", map[string]string{}, http.StatusBadRequest},
		{"bad json", "{", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if w := env.do(t, http.MethodPatch, path, tc.body); w.Code != tc.want {
			t.Errorf("%s: status = %d, want %d (%s)", tc.name, w.Code, tc.want, w.Body.String())
		}
	}
	if w := env.do(t, http.MethodPatch, "/workspace/items/sticky-99", map[string]string{"text": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("missing item = %d, want 404", w.Code)
	}
}

func TestDeleteItem(t *testing.T) {
	env := newEnv(t, "")
	env.openProject(t, "Board")
	it := env.createItem(t, "tasklist", 100, 100)

	for i := 0; i < 2; i++ {
		if w := env.do(t, http.MethodDelete, "/workspace/items/"+it.ID, nil); w.Code != http.StatusNoContent {
			t.Fatalf("delete #%d = %d", i+1, w.Code)
		}
	}
	if s := env.state(t); len(s.Snapshot.Items) != 0 || s.Snapshot.NextID != 2 {
		t.Errorf("state after delete = %+v", s.Snapshot)
	}
}

func TestExportPNG(t *testing.T) {
	env := newEnv(t, "")
	p := env.openProject(t, "Board")
	env.createItem(t, "sticky", 100, 100)
	env.createItem(t, "arrow", 400, 200)

	for _, path := range []string{"/workspace/export.png", "/projects/" + p.ID + "/export.png?scale=2"} {
		w := env.do(t, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: content type = %q", path, ct)
		}
		if _, err := png.Decode(w.Body); err != nil {
			t.Errorf("%s: decode: %v", path, err)
		}
	}
}

func TestSwitchProjectsKeepsWork(t *testing.T) {
	env := newEnv(t, "")
	a := env.openProject(t, "A")
	env.createItem(t, "sticky", 100, 100)
	env.do(t, http.MethodPost, "/workspace/wheel", map[string]float64{"delta": -500})

	env.openProject(t, "B")
	if s := env.state(t); len(s.Snapshot.Items) != 0 {
		t.Errorf("B has %d items", len(s.Snapshot.Items))
	}

	if w := env.do(t, http.MethodPost, "/projects/"+a.ID+"/open", nil); w.Code != http.StatusOK {
		t.Fatalf("reopen = %d", w.Code)
	}
	s := env.state(t)
	if s.ProjectID != a.ID || len(s.Snapshot.Items) != 1 || s.Snapshot.Scale != 1.5 {
		t.Errorf("A after reopen = %+v", s)
	}

	listed := decodeBody[ProjectListResponse](t, env.do(t, http.MethodGet, "/projects", nil))
	for _, p := range listed.Projects {
		if p.ID == a.ID && p.ItemCount != 1 {
			t.Errorf("A item count = %d", p.ItemCount)
		}
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	env := newEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	env := newEnv(t, "secret123")
	if w := env.do(t, http.MethodGet, "/projects", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	env := newEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Bearer") {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	env := newEnv(t, "")
	if w := env.do(t, http.MethodGet, "/projects", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	env := newEnvWithSSE(t, "secret", blockingSSE)
	if w := env.do(t, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	env := newEnvWithSSE(t, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d", w.Code)
	}
}

func TestSSEEvents_QueryToken(t *testing.T) {
	env := newEnvWithSSE(t, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with query token = %d", w.Code)
	}
}
