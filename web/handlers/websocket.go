package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/scrypster/lifegraph/pkg/types"
)

// ActivityMessage is the wire format for the /ws activity feed.
type ActivityMessage struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Tagging-only fields.
	Status types.TaggingStatus `json:"status,omitempty"`
}

// NewActivity builds a CRUD activity message.
func NewActivity(kind, id string) ActivityMessage {
	return ActivityMessage{Type: kind, ID: id, Timestamp: time.Now().UTC()}
}

// NewTaggingActivity builds a tagging-status message; clients use these to
// refresh memory cards without polling.
func NewTaggingActivity(memoryID string, status types.TaggingStatus) ActivityMessage {
	return ActivityMessage{
		Type:      "tagging",
		ID:        memoryID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}

// WebSocketHub fan-outs activity messages to connected clients. Slow clients
// whose send buffers fill up are disconnected rather than allowed to stall
// the broadcast path.
type WebSocketHub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	closed  bool
}

// NewWebSocketHub creates a new hub.
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{clients: make(map[chan []byte]struct{})}
}

// Broadcast sends a message to all connected clients. Safe to call from any
// goroutine, including the tagging workers.
func (h *WebSocketHub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ERROR: marshal WebSocket message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			// Buffer full; drop the client.
			delete(h.clients, ch)
			close(ch)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Stop disconnects all clients and rejects future broadcasts.
func (h *WebSocketHub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		close(ch)
	}
	h.clients = nil
}

func (h *WebSocketHub) subscribe() (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan []byte, 64)
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *WebSocketHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// ServeHTTP upgrades the connection and streams activity messages until the
// client disconnects.
func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		log.Printf("ERROR: WebSocket upgrade failed: %v", err)
		return
	}

	ch, ok := h.subscribe()
	if !ok {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	log.Printf("WebSocket client connected (total: %d)", h.ClientCount())

	defer func() {
		h.unsubscribe(ch)
		conn.Close(websocket.StatusNormalClosure, "")
		log.Printf("WebSocket client disconnected (total: %d)", h.ClientCount())
	}()

	// Reader goroutine drains client frames so pings are answered and
	// disconnects are noticed.
	readCtx, cancelRead := context.WithCancel(r.Context())
	defer cancelRead()
	go func() {
		for {
			if _, _, err := conn.Read(readCtx); err != nil {
				cancelRead()
				return
			}
		}
	}()

	for {
		select {
		case data, ok := <-ch:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(readCtx, 10*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		case <-readCtx.Done():
			return
		}
	}
}
