package api

import (
	"encoding/json"
	"net/http"

	"github.com/framewire/broker/internal/control"
	"github.com/framewire/broker/internal/version"
)

func streamLabel(id string) string {
	return control.Label(id)
}

// HealthResponse is the JSON body returned by GET /health, per spec.md §6.
type HealthResponse struct {
	Status           string       `json:"status"`
	Service          string       `json:"service"`
	Version          string       `json:"version"`
	ActiveStreams    int          `json:"active_streams"`
	TotalConnections int          `json:"total_connections"`
	Endpoints        []string     `json:"endpoints"`
	Streams          []StreamView `json:"streams,omitempty"`
}

// StreamView is one entry in the diagnostic stream listing: enough for an
// operator to decide whether a forced close is warranted.
type StreamView struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	Subscribers int    `json:"subscribers"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := registry.Snapshot()
	streams := make([]StreamView, len(snapshot))
	for i, s := range snapshot {
		streams[i] = StreamView{
			ID:          string(s.ID),
			Label:       streamLabel(string(s.ID)),
			Subscribers: s.Subscribers,
		}
	}

	resp := HealthResponse{
		Status:           "ok",
		Service:          "frame-broker",
		Version:          version.Version,
		ActiveStreams:    registry.ActiveStreams(),
		TotalConnections: registry.TotalSubscribers(),
		Endpoints:        []string{"/ingest/{stream_id}", "/ws/{stream_id}", "/health", "/metrics"},
		Streams:          streams,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
