package services

import "sync"

// Hub is the connection registry: one live client per user ID. A new
// registration for an already-registered user replaces the old entry; the old
// connection is left to die on its own.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register maps the user to this client and returns the client it displaced,
// if a different one was registered. The displaced connection is not closed
// here; callers decide what its session's end means.
func (h *Hub) Register(userID string, c *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.clients[userID]
	h.clients[userID] = c
	if old == c {
		return nil
	}
	return old
}

// Unregister removes the client and reports which user it carried. A client
// that was never identified, or that was already replaced by a newer
// connection, removes nothing.
func (h *Hub) Unregister(c *Client) (string, bool) {
	userID := c.UserID()
	if userID == "" {
		return "", false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] != c {
		return "", false
	}
	delete(h.clients, userID)
	return userID, true
}

func (h *Hub) Lookup(userID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	return c, ok
}

func (h *Hub) IsConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
