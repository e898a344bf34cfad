// Package events fans run-lifecycle notifications out to SSE clients.
package events

import (
	"encoding/json"
	"time"
)

// Event is one run-lifecycle notification on the wire.
type Event struct {
	Type  string          `json:"type"` // run.started | run.state | run.finished | run.failed
	At    time.Time       `json:"at"`
	RunID string          `json:"run_id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Make renders one event to its wire form.
func Make(runID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:  typ,
		At:    time.Now().UTC(),
		RunID: runID,
		Data:  raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
