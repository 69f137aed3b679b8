package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/framewire/broker/internal/broker"
	"github.com/framewire/broker/internal/config"
)

func TestMetricsHandlerReportsCounters(t *testing.T) {
	Init(broker.NewRegistry(4), config.BrokerConfig{MaxFrameBytes: 64, IngestReadTimeout: time.Second})
	counters.framesPublished.Store(0)
	counters.framesDelivered.Store(0)
	counters.lagEvents.Store(0)

	recordIngest(2)
	recordLag(3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	metricsHandler(w, req)

	body := w.Body.String()
	for _, want := range []string{
		"frame_broker_frames_published_total",
		"frame_broker_frames_delivered_total",
		"frame_broker_lag_events_total",
		"frame_broker_active_streams",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics output to contain %q, got:\n%s", want, body)
		}
	}
}
