// Package workspace owns the single open project: its live snapshot, the
// interaction machine driving it, and the saves it triggers. Every call runs
// under one mutex, so concurrent adapters (HTTP, MCP, the snapshot watcher)
// see the engine one handler at a time.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/corkboard/internal/apperr"
	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/geom"
	"github.com/starford/corkboard/internal/index"
	"github.com/starford/corkboard/internal/interaction"
	"github.com/starford/corkboard/internal/metrics"
	"github.com/starford/corkboard/internal/persistence"
	"github.com/starford/corkboard/internal/render"
)

// PresenterFunc builds the presenter for a newly opened project.
type PresenterFunc func(projectID string) interaction.Presenter

// Option configures a Workspace.
type Option func(*Workspace)

// WithPresenter sets how presenters are built. Without it notifications are
// discarded.
func WithPresenter(fn PresenterFunc) Option {
	return func(w *Workspace) { w.presenter = fn }
}

// WithMetrics records saves, gestures and zooms.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workspace) { w.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) { w.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// Workspace serializes access to the open project.
type Workspace struct {
	gw        *persistence.Gateway
	idx       index.ProjectIndex
	presenter PresenterFunc
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	mu           sync.Mutex
	projectID    string
	machine      interaction.Machine
	ictx         *interaction.Context
	lastChecksum string
}

// New creates a workspace with no open project.
func New(gw *persistence.Gateway, idx index.ProjectIndex, opts ...Option) *Workspace {
	w := &Workspace{
		gw:     gw,
		idx:    idx,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// saver persists the open snapshot and records the save in the index. It is
// only called from engine handlers, which already hold the workspace lock.
type saver struct {
	w  *Workspace
	id string
}

func (s saver) Save(ctx context.Context, snap *board.Snapshot) error {
	w := s.w
	start := time.Now()

	// The index is touched only after the write lands: an entry carrying a
	// checksum with no stored snapshot is treated as deleted by Sync.
	sum, err := w.gw.Save(ctx, s.id, snap)
	w.metrics.ObserveSave(time.Since(start).Seconds(), err)
	if err != nil {
		w.logger.Error("save failed",
			slog.String("project", s.id), slog.String("error", err.Error()))
		return err
	}
	w.lastChecksum = sum
	if err := w.idx.Touch(s.id, w.now().UnixMilli(), index.Summarize(snap), sum); err != nil {
		w.logger.Warn("index touch failed",
			slog.String("project", s.id), slog.String("error", err.Error()))
	}
	w.metrics.SetItemCounts(countItems(snap))
	return nil
}

func countItems(s *board.Snapshot) map[string]int {
	out := make(map[string]int)
	for _, it := range s.Items.Items() {
		out[string(it.Kind())]++
	}
	return out
}

// active returns the open context or ErrNoProject. Callers hold mu.
func (w *Workspace) active() (*interaction.Context, error) {
	if w.ictx == nil {
		return nil, apperr.ErrNoProject
	}
	return w.ictx, nil
}

// Open saves and tears down the current project, then loads projectID. A
// project with no stored snapshot starts empty. If saving the current project
// fails it stays open and the error is returned.
func (w *Workspace) Open(ctx context.Context, projectID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.idx.GetProject(projectID); err != nil {
		return fmt.Errorf("workspace: open %s: %w", projectID, err)
	}

	if w.ictx != nil {
		if err := w.ictx.Saver.Save(ctx, w.ictx.Snapshot); err != nil {
			return fmt.Errorf("workspace: save before switching: %w", err)
		}
		w.teardown()
	}

	snap := board.NewSnapshot()
	var sum string
	data, rawSum, err := w.gw.Raw(ctx, projectID)
	switch {
	case err == nil:
		if snap, err = persistence.Decode(data); err != nil {
			return fmt.Errorf("workspace: open %s: %w", projectID, err)
		}
		sum = rawSum
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return fmt.Errorf("workspace: open %s: %w", projectID, err)
	}

	var p interaction.Presenter
	if w.presenter != nil {
		p = w.presenter(projectID)
	}
	w.projectID = projectID
	w.lastChecksum = sum
	w.ictx = &interaction.Context{
		Snapshot:  snap,
		Presenter: p,
		Saver:     saver{w: w, id: projectID},
		Measurer:  render.Measurer{},
		Now:       w.now,
	}
	w.metrics.SetItemCounts(countItems(snap))
	w.logger.Info("project opened",
		slog.String("project", projectID), slog.Int("items", snap.Items.Len()))
	return nil
}

// Close saves the open project and tears it down. Closing with nothing open
// is a no-op.
func (w *Workspace) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ictx == nil {
		return nil
	}
	if err := w.ictx.Saver.Save(ctx, w.ictx.Snapshot); err != nil {
		return fmt.Errorf("workspace: save on close: %w", err)
	}
	w.logger.Info("project closed", slog.String("project", w.projectID))
	w.teardown()
	return nil
}

// Discard tears down projectID without saving when it is open. Used when the
// project itself is deleted.
func (w *Workspace) Discard(projectID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ictx != nil && w.projectID == projectID {
		w.teardown()
	}
}

func (w *Workspace) teardown() {
	w.machine.Reset()
	w.ictx = nil
	w.projectID = ""
	w.lastChecksum = ""
	w.metrics.SetItemCounts(nil)
}

// Current returns the open project id.
func (w *Workspace) Current() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.projectID, w.ictx != nil
}

// State is a point-in-time copy of the open project.
type State struct {
	ProjectID string          `json:"projectId"`
	Mode      string          `json:"mode"`
	Snapshot  *board.Snapshot `json:"snapshot"`
}

// Snapshot returns a deep copy of the open snapshot.
func (w *Workspace) Snapshot() (*State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return nil, err
	}
	snap, err := c.Snapshot.Clone()
	if err != nil {
		return nil, err
	}
	return &State{ProjectID: w.projectID, Mode: w.machine.Mode().String(), Snapshot: snap}, nil
}

// PointerDown starts a gesture with an explicit target.
func (w *Workspace) PointerDown(ev interaction.Pointer) (interaction.Mode, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return interaction.Idle, err
	}
	return w.machine.PointerDown(c, ev), nil
}

// PointerDownAt hit-tests the screen point and starts a gesture on whatever
// is under it.
func (w *Workspace) PointerDownAt(sx, sy float64, modifier bool) (interaction.Mode, interaction.Target, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return interaction.Idle, interaction.Target{}, err
	}
	target := interaction.HitTest(c, sx, sy)
	mode := w.machine.PointerDown(c, interaction.Pointer{X: sx, Y: sy, Target: target, Modifier: modifier})
	return mode, target, nil
}

// PointerMove applies the active gesture.
func (w *Workspace) PointerMove(sx, sy float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return err
	}
	w.machine.PointerMove(c, interaction.Pointer{X: sx, Y: sy})
	return nil
}

// PointerUp ends the active gesture and saves when one was active.
func (w *Workspace) PointerUp(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return err
	}
	mode := w.machine.Mode()
	err = w.machine.PointerUp(ctx, c)
	if mode != interaction.Idle {
		w.metrics.ObserveInteraction(mode.String())
	}
	return err
}

// Wheel zooms anchored at the screen point and returns the new viewport.
func (w *Workspace) Wheel(sx, sy, delta float64) (geom.Viewport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return geom.Viewport{}, err
	}
	interaction.Zoom(c, sx, sy, delta)
	w.metrics.ObserveZoom()
	return c.Snapshot.Viewport, nil
}

// CreateItem adds an item centered under the screen point. The returned item
// is a copy; it is returned together with a save error when only the save
// failed.
func (w *Workspace) CreateItem(ctx context.Context, kind board.Kind, sx, sy float64) (*board.Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return nil, err
	}
	it, saveErr := interaction.CreateItem(ctx, c, kind, sx, sy)
	if it == nil {
		return nil, saveErr
	}
	cp, err := copyItem(it)
	if err != nil {
		return nil, err
	}
	return cp, saveErr
}

// DeleteItem removes an item and saves.
func (w *Workspace) DeleteItem(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return err
	}
	return interaction.DeleteItem(ctx, c, id)
}

// Edit applies field edits to one item and saves once.
func (w *Workspace) Edit(ctx context.Context, id string, edits ...board.Edit) (*board.Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return nil, err
	}
	editErr := interaction.EditItem(ctx, c, id, edits...)
	it := c.Snapshot.Items.Get(id)
	if it == nil {
		return nil, editErr
	}
	cp, err := copyItem(it)
	if err != nil {
		return nil, err
	}
	return cp, editErr
}

// BringToFront raises an item above all others and saves.
func (w *Workspace) BringToFront(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return err
	}
	return interaction.BringToFront(ctx, c, id)
}

// MoveItem moves an item so its origin lands on the world point (x, y). The
// move runs through the machine as a complete drag gesture grabbed at the
// item origin, so it raises the item and saves exactly like a user drag.
// It fails with ErrConflict while another gesture is active.
func (w *Workspace) MoveItem(ctx context.Context, id string, x, y float64) (*board.Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return nil, err
	}
	if w.machine.Mode() != interaction.Idle {
		return nil, fmt.Errorf("workspace: %s gesture in progress: %w", w.machine.Mode(), apperr.ErrConflict)
	}
	it := c.Snapshot.Items.Get(id)
	if it == nil {
		return nil, fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}

	err = w.drag(ctx, c, it, x, y)
	cp, cpErr := copyItem(it)
	if cpErr != nil {
		return nil, cpErr
	}
	return cp, err
}

// drag runs a full drag gesture that grabs it at its origin and releases it
// with the origin on the world point (x, y). Callers hold mu and have checked
// that the machine is idle.
func (w *Workspace) drag(ctx context.Context, c *interaction.Context, it *board.Item, x, y float64) error {
	from := c.Snapshot.ScreenFromWorld(it.X, it.Y)
	to := c.Snapshot.ScreenFromWorld(x, y)
	w.machine.PointerDown(c, interaction.Pointer{
		X: from.X, Y: from.Y,
		Target: interaction.Target{ItemID: it.ID, Part: interaction.PartDragHandle},
	})
	w.machine.PointerMove(c, interaction.Pointer{X: to.X, Y: to.Y})
	err := w.machine.PointerUp(ctx, c)
	w.metrics.ObserveInteraction(interaction.Dragging.String())
	return err
}

// Change is a combined change to one item.
type Change struct {
	Edits []board.Edit
	Move  *geom.Point // new world origin
	Raise bool
}

// Update applies the edits, then the move, then the raise as one action and
// saves once. A failing step stops the sequence; steps already applied are
// still saved.
func (w *Workspace) Update(ctx context.Context, id string, u Change) (*board.Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, err := w.active()
	if err != nil {
		return nil, err
	}
	if u.Move != nil && w.machine.Mode() != interaction.Idle {
		return nil, fmt.Errorf("workspace: %s gesture in progress: %w", w.machine.Mode(), apperr.ErrConflict)
	}
	it := c.Snapshot.Items.Get(id)
	if it == nil {
		return nil, fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}

	// Steps run against a copy of the context without a saver.
	quiet := *c
	quiet.Saver = nil

	var stepErr error
	if len(u.Edits) > 0 {
		stepErr = interaction.EditItem(ctx, &quiet, id, u.Edits...)
	}
	if stepErr == nil && u.Move != nil {
		stepErr = w.drag(ctx, &quiet, it, u.Move.X, u.Move.Y)
	}
	if stepErr == nil && u.Raise {
		stepErr = interaction.BringToFront(ctx, &quiet, id)
	}
	err = errors.Join(stepErr, c.Saver.Save(ctx, c.Snapshot))

	cp, cpErr := copyItem(it)
	if cpErr != nil {
		return nil, cpErr
	}
	return cp, err
}

// Reload replaces the open snapshot with the stored one after an external
// write. It reloads only when projectID is open, no gesture is active and the
// stored checksum differs from the last one this workspace wrote or read.
func (w *Workspace) Reload(ctx context.Context, projectID string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ictx == nil || w.projectID != projectID || w.machine.Mode() != interaction.Idle {
		return false, nil
	}
	data, sum, err := w.gw.Raw(ctx, projectID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if sum == w.lastChecksum {
		return false, nil
	}
	snap, err := persistence.Decode(data)
	if err != nil {
		return false, err
	}
	w.ictx.Snapshot = snap
	w.lastChecksum = sum
	w.metrics.SetItemCounts(countItems(snap))
	if w.ictx.Presenter != nil {
		w.ictx.Presenter.ViewportChanged(snap.Viewport)
	}
	w.logger.Info("project reloaded", slog.String("project", projectID))
	return true, nil
}

func copyItem(it *board.Item) (*board.Item, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("workspace: copy item: %w", err)
	}
	cp := &board.Item{}
	if err := json.Unmarshal(data, cp); err != nil {
		return nil, fmt.Errorf("workspace: copy item: %w", err)
	}
	return cp, nil
}
