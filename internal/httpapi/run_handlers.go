package httpapi

import (
	"context"
	"net/http"

	"jobfeed-engine/internal/pipeline"
)

type RunHandler struct {
	Runner   *pipeline.Runner
	AfterRun func(pipeline.Summary)
}

type statusResponse struct {
	Status  pipeline.Status   `json:"status"`
	Running bool              `json:"running"`
	Last    *pipeline.Summary `json:"last,omitempty"`
}

func (h RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:  h.Runner.Status(),
		Running: h.Runner.Running(),
	}
	if last, ok := h.Runner.LastSummary(); ok {
		resp.Last = &last
	}
	writeJSON(w, resp)
}

func (h RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Runner.Running() {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	// Detached from the request: the pass outlives the response. The
	// runner logs its own failures, including the lost race where two
	// POSTs slip past the check above.
	go func() {
		sum, err := h.Runner.Run(context.Background())
		if err != nil {
			return
		}
		if h.AfterRun != nil {
			h.AfterRun(sum)
		}
	}()

	writeJSON(w, map[string]any{"ok": true})
}
