package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeItemRemoved, Data: map[string]string{"id": "sticky-1"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: item.removed") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"sticky-1"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

// drain collects every message that arrives within d.
func drain(ch chan []byte, d time.Duration) []string {
	var out []string
	deadline := time.After(d)
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		case <-deadline:
			return out
		}
	}
}

func TestViewportThrottleKeepsLast(t *testing.T) {
	b := NewBroker(200 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for _, scale := range []string{"1.1", "1.2", "1.3", "1.4"} {
		b.Publish(Event{Type: TypeViewportChanged, Data: map[string]string{"scale": scale}})
	}

	msgs := drain(ch, 500*time.Millisecond)
	if len(msgs) != 2 {
		t.Fatalf("viewport events = %d, want 2 (first and last): %q", len(msgs), msgs)
	}
	if !strings.Contains(msgs[0], `"scale":"1.1"`) {
		t.Errorf("first = %q", msgs[0])
	}
	if !strings.Contains(msgs[1], `"scale":"1.4"`) {
		t.Errorf("trailing = %q, want the last viewport", msgs[1])
	}
}

func TestPublishProjectEvent(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishProjectEvent("updated", "p1")
	msgs := drain(ch, 100*time.Millisecond)
	if len(msgs) != 1 {
		t.Fatalf("messages = %q", msgs)
	}
	if !strings.Contains(msgs[0], "event: project.changed") || !strings.Contains(msgs[0], `"kind":"updated"`) {
		t.Errorf("message = %q", msgs[0])
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeItemContent, Data: map[string]string{"id": "x"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: item.content") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: TypeItemRemoved, Data: map[string]string{"id": "x"}})
	b.Publish(Event{Type: TypeViewportChanged})
	b.PublishProjectEvent("updated", "x")
}
