// Package api exposes the broker's HTTP surface: frame ingest, the
// subscribe push channel, health/metrics diagnostics, and the admin
// forced-eviction endpoint.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/framewire/broker/internal/audit"
	"github.com/framewire/broker/internal/broker"
	"github.com/framewire/broker/internal/config"
)

var (
	registry *broker.Registry
	cfg      config.BrokerConfig
)

// Init wires the package-level Registry and config used by every handler.
// Must be called once before ListenAndServe/Start.
func Init(r *broker.Registry, c config.BrokerConfig) {
	registry = r
	cfg = c
	registry.SetAuditFunc(func(event string, id broker.StreamId, fields map[string]interface{}) {
		audit.Emit("info", event, string(id), "", fields)
	})
}

// NewMux builds the broker's HTTP routing table.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest/{stream_id}", ingestHandler)
	mux.HandleFunc("GET /ws/{stream_id}", subscribeHandler)
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /metrics", metricsHandler)
	mux.HandleFunc("POST /admin/streams/{stream_id}/close", requireAdmin(adminCloseHandler))
	mux.HandleFunc("GET /admin/audit", requireAdmin(auditHandler))
	return mux
}

// ListenAndServe starts the broker's HTTP server on cfg.BindAddr:cfg.Port.
// It blocks until the server exits.
func ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.Port)
	log.Printf("frame broker listening on %s\n", addr)
	return http.ListenAndServe(addr, NewMux())
}

// Start runs ListenAndServe in a goroutine. Errors are logged but do not
// stop the caller.
func Start() {
	go func() {
		if err := ListenAndServe(); err != nil {
			log.Printf("api server error: %v", err)
		}
	}()
}
