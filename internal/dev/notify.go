package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// EventType represents the type of a client notification.
type EventType string

const (
	EventHello   EventType = "hello"
	EventRebuild EventType = "rebuild"
	EventStale   EventType = "stale"
	EventError   EventType = "error"
)

// Event is sent to preview clients via WebSocket.
type Event struct {
	Type    EventType `json:"type"`
	Client  string    `json:"client,omitempty"`
	Version uint64    `json:"version,omitempty"`
	Files   []string  `json:"files,omitempty"`
	Error   string    `json:"error,omitempty"`
}

const writeTimeout = 5 * time.Second

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages WebSocket connections of preview clients.
type Hub struct {
	clients  map[string]*client
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// version returns the current snapshot version for hello events.
	version func() uint64
}

// NewHub creates a new notification hub. A nil logger uses slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.clients[c.id] = c
	version := h.version
	h.mu.Unlock()
	h.logger.Debug("client connected", "client", c.id)

	hello := Event{Type: EventHello, Client: c.id}
	if version != nil {
		hello.Version = version()
	}
	if data, err := json.Marshal(hello); err == nil {
		c.send(data)
	}

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	h.logger.Debug("client disconnected", "client", c.id)
}

// Broadcast sends an event to all connected clients. Clients that cannot
// be written to are dropped.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.remove(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		c.conn.Close()
		delete(h.clients, id)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.conn.Close()
}

func (h *Hub) setVersion(fn func() uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version = fn
}
