package sse

import (
	"encoding/json"

	"github.com/starford/corkboard/internal/board"
	"github.com/starford/corkboard/internal/geom"
)

// Presenter publishes engine notifications for one open project. Payloads
// are encoded when the notification arrives so the broker never reads live
// board state.
type Presenter struct {
	broker  *Broker
	project string
}

// NewPresenter returns a presenter tagging every event with projectID.
func NewPresenter(b *Broker, projectID string) *Presenter {
	return &Presenter{broker: b, project: projectID}
}

type itemPayload struct {
	Project string          `json:"project"`
	Item    json.RawMessage `json:"item"`
}

type geometryPayload struct {
	Project  string       `json:"project"`
	ID       string       `json:"id"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	W        float64      `json:"w"`
	H        board.Height `json:"h"`
	Rotation float64      `json:"rotation"`
	Z        int          `json:"z"`
}

type removedPayload struct {
	Project string `json:"project"`
	ID      string `json:"id"`
}

type viewportPayload struct {
	Project string `json:"project"`
	geom.Viewport
}

func (p *Presenter) publishItem(typ string, it *board.Item) {
	raw, err := json.Marshal(it)
	if err != nil {
		return
	}
	p.broker.Publish(Event{Type: typ, Data: itemPayload{Project: p.project, Item: raw}})
}

func (p *Presenter) ItemCreated(it *board.Item) { p.publishItem(TypeItemCreated, it) }

func (p *Presenter) ItemContentChanged(it *board.Item) { p.publishItem(TypeItemContent, it) }

func (p *Presenter) ItemRemoved(id string) {
	p.broker.Publish(Event{Type: TypeItemRemoved, Data: removedPayload{Project: p.project, ID: id}})
}

func (p *Presenter) ItemGeometryChanged(it *board.Item) {
	p.broker.Publish(Event{Type: TypeItemGeometry, Data: geometryPayload{
		Project:  p.project,
		ID:       it.ID,
		X:        it.X,
		Y:        it.Y,
		W:        it.W,
		H:        it.H,
		Rotation: it.Rotation,
		Z:        it.Z,
	}})
}

func (p *Presenter) ViewportChanged(v geom.Viewport) {
	p.broker.Publish(Event{Type: TypeViewportChanged, Data: viewportPayload{Project: p.project, Viewport: v}})
}
