package httpapi

import (
	"net/http"
	"strconv"

	"jobfeed-engine/internal/store"
)

type JobsHandler struct {
	Ledger *store.Ledger
}

// List serves the ledger. The sink is append-only, so this is the whole
// jobs surface.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	jobs, err := h.Ledger.List(r.Context(), store.ListOpts{
		Sort:   q.Get("sort"),
		Window: q.Get("window"),
		Limit:  limit,
	})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, jobs)
}
