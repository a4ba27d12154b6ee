package hub

import "sync"

// TypingSet tracks which connections currently signal "typing". Keyed by
// connection id, so a connection appears at most once; display names are
// resolved against the registry when the typist list is broadcast.
type TypingSet struct {
	mu    sync.Mutex
	set   map[string]struct{}
	order []string
}

// NewTypingSet returns an empty typing set.
func NewTypingSet() *TypingSet {
	return &TypingSet{set: make(map[string]struct{})}
}

// SetTyping inserts or removes the connection from the set.
func (t *TypingSet) SetTyping(connID string, isTyping bool) {
	if !isTyping {
		t.Clear(connID)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.set[connID]; ok {
		return
	}
	t.set[connID] = struct{}{}
	t.order = append(t.order, connID)
}

// Clear removes the connection from the set. Idempotent; called on
// typing-stop and on disconnect.
func (t *TypingSet) Clear(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.set[connID]; !ok {
		return
	}
	delete(t.set, connID)
	for i, id := range t.order {
		if id == connID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Connections snapshots the typing connection ids in insertion order.
func (t *TypingSet) Connections() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}
