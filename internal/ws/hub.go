package ws

import (
	"encoding/json"
	"sync"
	"time"
)

// Event is a back-office dashboard notification about an application.
type Event struct {
	Type          string                 `json:"type"` // application.created | application.paid | application.dispatched
	ApplicationID string                 `json:"application_id"`
	Data          map[string]interface{} `json:"data,omitempty"`
	At            time.Time              `json:"at"`
}

// Client is one connected staff dashboard.
type Client struct {
	Email  string
	Send   chan []byte
	hub    *Hub
	mu     sync.Mutex
	closed bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// Hub maintains the set of connected dashboards and broadcasts lifecycle
// events to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Publish broadcasts an event; slow clients are skipped rather than blocked on.
func (h *Hub) Publish(eventType, applicationID string, data map[string]interface{}) {
	payload, err := json.Marshal(Event{
		Type:          eventType,
		ApplicationID: applicationID,
		Data:          data,
		At:            time.Now(),
	})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.Send <- payload:
		default:
		}
	}
}
