// Package telemetry streams status snapshots to websocket clients. The host
// broadcasts from its loop; clients connect through the Hub's handler.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 200 * time.Millisecond

// Hub fans out JSON messages. New clients receive the last message first.
// Each client has its own writer goroutine, so a slow client never holds up
// Broadcast; it only misses intermediate messages.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]*client
	last     []byte
	sent     uint64
	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan []byte // holds at most the newest unsent message
}

func NewHub() *Hub {
	return &Hub{
		clients:  map[*websocket.Conn]*client{},
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// ServeHTTP upgrades the request and registers the client until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 1)}
	h.mu.Lock()
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[conn] = c
	h.mu.Unlock()
	log.Debug().Str("remote", r.RemoteAddr).Msg("status client connected")

	go h.writeLoop(c)
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) writeLoop(c *client) {
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write status")
			h.drop(c.conn)
			return
		}
	}
}

// HandleHealth reports the last message and the client count.
func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := map[string]any{
		"clients": len(h.clients),
		"sent":    h.sent,
	}
	if h.last != nil {
		resp["status"] = json.RawMessage(h.last)
	}
	h.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Broadcast marshals v and queues it for every client without waiting on the
// network. A client still writing an older message gets only the newest one
// once it is done.
func (h *Hub) Broadcast(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b
	h.sent++
	for _, c := range h.clients {
		select {
		case c.send <- b:
		default:
			// Replace the stale queued message. Sends only happen under h.mu,
			// so the slot is free after the drain.
			select {
			case <-c.send:
			default:
			}
			c.send <- b
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, c := range h.clients {
		delete(h.clients, conn)
		close(c.send)
		conn.Close()
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
}

// Serve starts an HTTP server exposing the hub at /status and the health
// report at /health. It returns the server so the host can shut it down.
func Serve(addr string, h *Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/status", h)
	mux.HandleFunc("/health", h.HandleHealth)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Str("addr", addr).Msg("status server stopped")
		}
	}()
	return srv
}
