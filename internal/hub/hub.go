package hub

import (
	"sync"

	"github.com/hubbubchat/hubbub/internal/protocol"
)

// Hub tracks the outbound channel of every live connection and fans
// envelopes out to them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]chan protocol.Envelope
}

// NewHub initializes an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]chan protocol.Envelope)}
}

// Register adds a subscriber channel for the connection.
func (h *Hub) Register(connID string, ch chan protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[connID] = ch
}

// Unregister removes the subscriber if present.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, connID)
}

// Len reports the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast pushes the envelope to every live connection. Delivery is
// best-effort: a connection with a full buffer misses the envelope
// without holding up the others.
func (h *Hub) Broadcast(env protocol.Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.sessions {
		select {
		case ch <- env:
		default:
		}
	}
}

// SendTo pushes the envelope to a single connection and reports whether
// the target was live. Unknown targets are dropped silently.
func (h *Hub) SendTo(connID string, env protocol.Envelope) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ch, ok := h.sessions[connID]
	if !ok {
		return false
	}
	select {
	case ch <- env:
	default:
	}
	return true
}
