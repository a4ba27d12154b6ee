// Package history holds the capacity-bounded, append-only message log
// shared by every connection. Entries are mutated in place by reactions
// and read receipts and evicted oldest-first once the log is full, so a
// mutation may target an id that no longer exists; that is a no-op, not
// an error.
package history

import (
	"sync"
	"time"

	"github.com/hubbubchat/hubbub/internal/metrics"
	"github.com/hubbubchat/hubbub/internal/protocol"
)

// DefaultCapacity bounds the number of retained messages.
const DefaultCapacity = 100

// Log is an insertion-ordered message store. Insertion order equals
// chronological order because ids and timestamps are assigned on append.
type Log struct {
	mu       sync.RWMutex
	capacity int
	messages []*protocol.Message
	lastID   int64
}

// NewLog returns an empty log with the given retention capacity, or
// DefaultCapacity if it is not positive.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Append assigns the record a unique increasing id and a timestamp (when
// absent), stores it, and evicts the oldest entry if the log exceeds its
// capacity. The stored record is returned so the caller can acknowledge
// it to the sender.
func (l *Log) Append(msg protocol.Message) protocol.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg.ID = l.nextID()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	stored := msg
	l.messages = append(l.messages, &stored)
	if len(l.messages) > l.capacity {
		overflow := len(l.messages) - l.capacity
		l.messages = append([]*protocol.Message(nil), l.messages[overflow:]...)
		metrics.HistoryEvictions.Add(float64(overflow))
	}
	return stored.Clone()
}

// Ids derive from the wall clock in milliseconds, bumped past the last
// assigned id when appends land on the same millisecond.
func (l *Log) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id
	return id
}

// Len reports the number of retained messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// FindByID returns a copy of the message with the given id.
func (l *Log) FindByID(id int64) (protocol.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if msg := l.lookup(id); msg != nil {
		return msg.Clone(), true
	}
	return protocol.Message{}, false
}

// AddReaction sets the user's reaction on the message, overwriting any
// prior reaction by the same user, and returns a copy of the full
// updated mapping. A nil mapping means the id is unknown or already
// evicted.
func (l *Log) AddReaction(id int64, username, symbol string) map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := l.lookup(id)
	if msg == nil {
		return nil
	}
	if msg.Reactions == nil {
		msg.Reactions = make(map[string]string)
	}
	msg.Reactions[username] = symbol

	out := make(map[string]string, len(msg.Reactions))
	for user, s := range msg.Reactions {
		out[user] = s
	}
	return out
}

// MarkRead adds the user to the message's reader set. It returns a copy
// of the updated set and whether this call changed it; re-marking an
// existing reader reports changed=false. A nil set means the id is
// unknown or already evicted.
func (l *Log) MarkRead(id int64, username string) ([]string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := l.lookup(id)
	if msg == nil {
		return nil, false
	}
	for _, reader := range msg.ReadBy {
		if reader == username {
			return append([]string(nil), msg.ReadBy...), false
		}
	}
	msg.ReadBy = append(msg.ReadBy, username)
	return append([]string(nil), msg.ReadBy...), true
}

// Page returns up to limit messages strictly older than before, in
// chronological order. A zero before means "no upper bound": the most
// recent limit messages. Equal timestamps keep id (insertion) order. An
// empty result signals no more history.
func (l *Log) Page(before time.Time, limit int) []protocol.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 {
		return nil
	}

	// Walk newest-first collecting matches, then reverse to ascending.
	selected := make([]protocol.Message, 0, limit)
	for i := len(l.messages) - 1; i >= 0 && len(selected) < limit; i-- {
		msg := l.messages[i]
		if !before.IsZero() && !msg.Timestamp.Before(before) {
			continue
		}
		selected = append(selected, msg.Clone())
	}
	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}
	return selected
}

func (l *Log) lookup(id int64) *protocol.Message {
	for _, msg := range l.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}
