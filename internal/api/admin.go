package api

import (
	"encoding/json"
	"net/http"

	"github.com/framewire/broker/internal/broker"
)

// AdminResponse is the JSON body returned by the forced-close admin
// endpoint.
type AdminResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// adminCloseHandler implements POST /admin/streams/{stream_id}/close: an
// HTTP mirror of the MQTT forced-eviction path in internal/control, for
// operators who'd rather not stand up an MQTT client.
func adminCloseHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := r.PathValue("stream_id")
	if err := broker.ValidateStreamId(id); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: "invalid stream id"})
		return
	}

	registry.Close(broker.StreamId(id))
	_ = json.NewEncoder(w).Encode(AdminResponse{OK: true})
}
