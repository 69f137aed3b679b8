package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/framewire/broker/internal/audit"
	"github.com/framewire/broker/internal/broker"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period; must be less than pongWait.
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Stream id validation is the access boundary here, not origin; a
	// fronting proxy is assumed to own transport-level auth per spec.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// subscribeHandler upgrades a GET /ws/{stream_id} request to a
// bidirectional binary push channel and drains a Subscription onto it
// until the peer disconnects, the server shuts down, or the channel
// closes.
func subscribeHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("stream_id")
	if err := broker.ValidateStreamId(id); err != nil {
		audit.Emit("warning", "subscribe.rejected", id, "invalid stream id", nil)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed for stream %q: %v", id, err)
		return
	}

	handle, err := registry.Subscribe(broker.StreamId(id))
	if err != nil {
		// Channel was closed by a concurrent forced eviction while
		// Registry.Subscribe was attaching to it; tell the peer and hang
		// up cleanly.
		audit.Emit("warning", "subscribe.rejected", id, "stream closed", nil)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "stream closed"))
		conn.Close()
		return
	}
	defer handle.Release()

	runSubscribeSession(conn, handle.Subscription(), id)
}

// runSubscribeSession is the session loop described in spec.md §5: it
// concurrently reads from the peer (to notice close and service pongs)
// and drains the Subscription, pushing each frame or ping to the peer.
func runSubscribeSession(conn *websocket.Conn, sub *broker.Subscription, streamID string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	recvCh := make(chan broker.RecvOutcome)
	go func() {
		for {
			out := sub.Recv(ctx)
			select {
			case recvCh <- out:
			case <-ctx.Done():
				return
			}
			if out.Status == broker.RecvClosed {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			// Peer disconnected or sent a close frame.
			return

		case out := <-recvCh:
			switch out.Status {
			case broker.RecvFrame:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				err := conn.WriteMessage(websocket.BinaryMessage, out.Frame.Bytes())
				out.Frame.Release()
				if err != nil {
					log.Printf("ws: write failed for stream %q: %v", streamID, err)
					return
				}
			case broker.RecvLagged:
				// Lag is a steady-state signal, not a disconnect reason:
				// keep delivering.
				log.Printf("ws: stream %q subscriber lagged by %d frames", streamID, out.Lagged)
				recordLag(out.Lagged)
			case broker.RecvClosed:
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
