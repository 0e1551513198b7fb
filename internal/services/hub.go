package services

import (
	"encoding/json"
	"sync"

	"genstudio/types"
)

// Hub routes job events to the websocket client registered under a client id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*WSClient
}

func safeCloseBytes(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func NewHub() *Hub {
	return &Hub{
		clients: map[string]*WSClient{},
	}
}

// Add registers c, replacing any earlier connection with the same id.
func (h *Hub) Add(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[c.id]; ok && old != c {
		safeCloseBytes(old.send)
		old.close()
	}

	h.clients[c.id] = c
}

// Remove drops c if it is still the registered connection for its id.
func (h *Hub) Remove(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
		safeCloseBytes(c.send)
		c.close()
	}
}

func (h *Hub) Connected(clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[clientID]
	return ok
}

func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := h.clients
	h.clients = map[string]*WSClient{}
	h.mu.Unlock()

	for _, c := range clients {
		safeCloseBytes(c.send)
		c.close()
	}
}

// SendTo queues event for clientID. A client whose buffer is full is dropped.
// The send happens under the read lock so Add and Remove cannot close the
// channel underneath it.
func (h *Hub) SendTo(clientID string, event types.JobEvent) {
	if clientID == "" {
		return
	}

	b, _ := json.Marshal(event)

	h.mu.RLock()
	c := h.clients[clientID]
	full := false
	if c != nil {
		select {
		case c.send <- b:
		default:
			full = true
		}
	}
	h.mu.RUnlock()

	if full {
		h.Remove(c)
	}
}
