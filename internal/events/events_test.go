package events

import (
	"encoding/json"
	"testing"
)

func TestPublishFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(b)

	h.Publish("run-1", "run.started", nil)

	for name, ch := range map[string]chan string{"a": a, "b": b} {
		select {
		case raw := <-ch:
			var e Event
			if err := json.Unmarshal([]byte(raw), &e); err != nil {
				t.Fatalf("%s: bad event json: %v", name, err)
			}
			if e.Type != "run.started" || e.RunID != "run-1" {
				t.Errorf("%s: event = %+v", name, e)
			}
			if e.At.IsZero() {
				t.Errorf("%s: missing timestamp", name)
			}
		default:
			t.Fatalf("%s: no event delivered", name)
		}
	}

	h.Unsubscribe(a)
	if _, open := <-a; open {
		t.Error("unsubscribed channel must be closed")
	}

	// publishing after unsubscribe must not panic or deliver to a
	h.Publish("run-1", "run.finished", map[string]int{"stored": 3})
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// overrun the buffer; extra events drop instead of stalling
	for i := 0; i < 100; i++ {
		h.Publish("run-1", "run.state", map[string]int{"i": i})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffer holds %d, want full %d", len(ch), cap(ch))
	}
}
