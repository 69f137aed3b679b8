package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/framewire/broker/internal/audit"
	"github.com/framewire/broker/internal/broker"
	"github.com/framewire/broker/internal/frame"
)

// ingestHandler implements POST /ingest/{stream_id}: one producer POST is
// one frame published on the matching channel.
func ingestHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("stream_id")
	if err := broker.ValidateStreamId(id); err != nil {
		audit.Emit("warning", "ingest.rejected", id, "invalid stream id", nil)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	body, err := readBodyWithTimeout(w, r, int64(cfg.MaxFrameBytes), cfg.IngestReadTimeout)
	if err != nil {
		if errors.Is(err, errReadTimeout) {
			audit.Emit("warning", "ingest.rejected", id, "read timed out", nil)
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}
		if errors.Is(err, errBodyTooLarge) {
			audit.Emit("warning", "ingest.rejected", id, "body too large", nil)
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		log.Printf("ingest: body read failed for stream %q: %v", id, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	f, err := frame.New(body, cfg.MaxFrameBytes)
	if err != nil {
		audit.Emit("warning", "ingest.rejected", id, "invalid frame", nil)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	out := registry.Publish(broker.StreamId(id), f)
	f.Release()

	switch {
	case out.Status == broker.Delivered && out.Count >= 1:
		recordIngest(out.Count)
		w.WriteHeader(http.StatusOK)
	default:
		// Delivered(0) (subscribers existed at lookup but dropped before
		// enqueue completed) and NoSubscribers both mean "received, not
		// delivered anywhere" — not an error.
		recordIngest(0)
		w.WriteHeader(http.StatusAccepted)
	}
}

var (
	errReadTimeout  = errors.New("api: ingest read timed out")
	errBodyTooLarge = errors.New("api: ingest body too large")
)

// readBodyWithTimeout reads r.Body up to maxBytes, bounding the read by a
// per-request deadline set on the underlying connection via
// http.ResponseController, matching the deadline style the subscribe
// handler already uses on its WebSocket connection.
func readBodyWithTimeout(w http.ResponseWriter, r *http.Request, limit int64, timeout time.Duration) ([]byte, error) {
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(time.Now().Add(timeout)); err == nil {
		defer rc.SetReadDeadline(time.Time{})
	}

	// Read one byte past limit so an exactly-at-limit body is
	// distinguishable from an over-limit one.
	b, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
			return nil, errReadTimeout
		}
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errBodyTooLarge
	}
	return b, nil
}
