package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/framewire/broker/internal/audit"
)

// auditHandler implements GET /admin/audit: an operator-facing view of the
// broker's lifecycle and rejection trail, mirroring the teacher's events
// endpoint. It serves from Postgres when configured (?stream_id and ?limit
// narrow the query), falling back to the in-memory ring buffer otherwise.
func auditHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	streamID := r.URL.Query().Get("stream_id")
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	if client := audit.GetPostgresClient(); client != nil {
		rows, err := client.Query(streamID, limit)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: "audit query failed"})
			return
		}
		_ = json.NewEncoder(w).Encode(rows)
		return
	}

	_ = json.NewEncoder(w).Encode(audit.Snapshot())
}
