package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/framewire/broker/internal/storage/postgres"
)

var buffer = NewRingBuffer(256)

var (
	pgClient      *postgres.Client
	pgMu          sync.RWMutex
	pgErrorLogged bool
)

// SetPostgresClient sets the Postgres client events are persisted to. A nil
// client (the default) leaves audit events in memory only.
func SetPostgresClient(client *postgres.Client) {
	pgMu.Lock()
	pgClient = client
	pgMu.Unlock()
}

// GetPostgresClient returns the currently configured Postgres client, or nil.
func GetPostgresClient() *postgres.Client {
	pgMu.RLock()
	defer pgMu.RUnlock()
	return pgClient
}

// Event is one entry in the broker's operational audit trail: a channel
// lifecycle transition or a rejected request, never a frame payload.
type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	StreamID  string                 `json:"stream_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emit records an event in the in-memory ring buffer and, if configured,
// appends it to Postgres. The append runs synchronously, so Emit returns
// only after the insert completes or fails. Persistence failure never
// fails the caller: it is logged once to the ring buffer as a
// system.error and otherwise swallowed.
func Emit(level, name, streamID, msg string, fields map[string]interface{}) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	e := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		StreamID:  streamID,
		Fields:    fields,
	}

	buffer.Add(e)
	broadcast(e)

	pgMu.RLock()
	client := pgClient
	errorLogged := pgErrorLogged
	pgMu.RUnlock()

	if client != nil {
		if err := client.Append(ts, level, name, msg, fields, streamID); err != nil && !errorLogged {
			pgMu.Lock()
			if !pgErrorLogged {
				pgErrorLogged = true
				pgMu.Unlock()
				// Added directly to the buffer, bypassing Emit, to avoid
				// recursing back into this failure path.
				buffer.Add(Event{
					Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
					Level:     "error",
					Name:      "system.error",
					Message:   "postgres append failed",
					Fields:    map[string]interface{}{"error": err.Error()},
				})
			} else {
				pgMu.Unlock()
			}
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return b, nil
}

// Snapshot returns the events currently held in the ring buffer, oldest
// first.
func Snapshot() []Event {
	return buffer.Snapshot()
}

// Clear resets the in-memory event buffer. Used for testing.
func Clear() {
	buffer.Clear()
}
