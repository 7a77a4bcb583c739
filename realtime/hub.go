package realtime

import (
	"log/slog"
	"sync"
)

// Hub tracks open connections so they can be counted and closed on shutdown.
type Hub struct {
	mu     sync.Mutex
	conns  map[*Conn]struct{}
	closed bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{conns: make(map[*Conn]struct{}), logger: logger}
}

// Register adds c; it returns false once the hub has been shut down.
func (h *Hub) Register(c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	return true
}

func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// Stats counts open connections per transport kind.
func (h *Hub) Stats() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[string]int{"sse": 0, "websocket": 0}
	for c := range h.conns {
		out[c.Kind()]++
	}
	return out
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// CloseAll closes every connection and refuses new ones.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.Close(); err != nil {
			h.logger.Debug("error closing realtime connection", "conn_id", c.ID, "error", err)
		}
	}
	if len(conns) > 0 {
		h.logger.Info("closed realtime connections", "count", len(conns))
	}
}
