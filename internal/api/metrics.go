package api

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/framewire/broker/internal/version"
)

// counters backs the Prometheus-text /metrics endpoint. All fields are
// accessed via the atomic package so handlers never need a lock for a
// simple increment.
var counters struct {
	framesPublished atomic.Int64
	framesDelivered atomic.Int64
	lagEvents       atomic.Int64
}

// recordIngest updates the publish/delivery counters for one ingest
// request. delivered is the subscriber count the frame was enqueued into
// (0 is valid — no listeners or a lag-eviction race).
func recordIngest(delivered int) {
	counters.framesPublished.Add(1)
	if delivered > 0 {
		counters.framesDelivered.Add(int64(delivered))
	}
}

// recordLag is called by the subscribe session loop whenever it observes
// a RecvLagged outcome.
func recordLag(n int) {
	counters.lagEvents.Add(int64(n))
}

// metricsHandler returns Prometheus-compatible metrics in text format.
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	writeMetric := func(name, mtype, help string, value interface{}) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		fmt.Fprintf(w, "%s{version=%q} %v\n", name, version.Version, value)
	}

	writeMetric("frame_broker_active_streams", "gauge",
		"Number of streams with at least one live subscriber", registry.ActiveStreams())
	writeMetric("frame_broker_total_subscribers", "gauge",
		"Total number of live subscriptions across all streams", registry.TotalSubscribers())
	writeMetric("frame_broker_frames_published_total", "counter",
		"Total number of frames accepted by the ingest handler", counters.framesPublished.Load())
	writeMetric("frame_broker_frames_delivered_total", "counter",
		"Total number of subscriber deliveries across all frames", counters.framesDelivered.Load())
	writeMetric("frame_broker_lag_events_total", "counter",
		"Total number of frames dropped for lagging subscribers", counters.lagEvents.Load())
}
