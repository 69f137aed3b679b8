package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// EventRow represents one audit event row stored in Postgres.
type EventRow struct {
	EventID   int64                  `json:"event_id"`
	Timestamp time.Time              `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   *string                `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Service   string                 `json:"service"`
	StreamID  *string                `json:"stream_id,omitempty"`
}

// Client manages the Postgres connection backing the broker's operational
// audit log. It never stores frame payloads — only channel lifecycle and
// rejection events.
type Client struct {
	db      *sql.DB
	service string
}

// New creates a new Postgres client using environment variables. service
// tags every row so multiple broker deployments can share one database.
// Returns an error if the connection or schema bootstrap fails; the caller
// is expected to treat that as "audit persistence unavailable" rather than
// a fatal startup condition.
func New(service string) (*Client, error) {
	host := getEnv("PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	user := getEnv("PGUSER", "broker")
	dbname := getEnv("PGDATABASE", "broker")
	password := os.Getenv("PGPASSWORD")

	var connStr string
	if password != "" {
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	} else {
		connStr = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
			host, port, user, dbname)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{
		db:      db,
		service: service,
	}

	if err := client.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create broker_events table: %w", err)
	}

	return client, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func (c *Client) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS broker_events (
			event_id  BIGSERIAL PRIMARY KEY,
			ts        TIMESTAMPTZ NOT NULL,
			level     TEXT NOT NULL,
			event     TEXT NOT NULL,
			msg       TEXT,
			fields    JSONB,
			service   TEXT NOT NULL,
			stream_id TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_broker_events_ts ON broker_events(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_broker_events_stream_id ON broker_events(stream_id);
	`
	_, err := c.db.Exec(query)
	return err
}

// Append inserts one audit event into the database. Returns an error if the
// insert fails; the caller (internal/audit) is expected to log this once
// and otherwise swallow it rather than fail the request that triggered it.
func (c *Client) Append(ts time.Time, level, event, msg string, fields map[string]interface{}, streamID string) error {
	var fieldsJSON []byte
	var err error
	if fields != nil {
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	var msgPtr *string
	if msg != "" {
		msgPtr = &msg
	}

	var streamPtr *string
	if streamID != "" {
		streamPtr = &streamID
	}

	query := `
		INSERT INTO broker_events (ts, level, event, msg, fields, service, stream_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = c.db.Exec(query, ts, level, event, msgPtr, fieldsJSON, c.service, streamPtr)
	return err
}

// Query returns the last N audit events, newest first, optionally filtered
// to a single stream (pass "" for every stream).
func (c *Client) Query(streamID string, limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 10000 {
		limit = 10000
	}

	query := `
		SELECT event_id, ts, level, event, msg, fields, service, stream_id
		FROM broker_events
		WHERE service = $1 AND ($2 = '' OR stream_id = $2)
		ORDER BY ts DESC
		LIMIT $3
	`
	rows, err := c.db.Query(query, c.service, streamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var fieldsJSON []byte
		var msg, sid sql.NullString

		if err := rows.Scan(&e.EventID, &e.Timestamp, &e.Level, &e.Event, &msg, &fieldsJSON, &e.Service, &sid); err != nil {
			return nil, err
		}

		if msg.Valid {
			e.Message = &msg.String
		}
		if sid.Valid {
			e.StreamID = &sid.String
		}
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
