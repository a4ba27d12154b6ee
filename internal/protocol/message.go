package protocol

import "time"

// MessageKind distinguishes stored message records.
type MessageKind string

const (
	MessageKindChat    MessageKind = "chat"
	MessageKindPrivate MessageKind = "private"
	MessageKindFile    MessageKind = "file"
)

// Message is a chat record as stored in the message log and sent on the wire.
type Message struct {
	ID        int64             `json:"id"`
	Sender    string            `json:"sender"`
	SenderID  string            `json:"senderId"`
	Body      string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Kind      MessageKind       `json:"kind"`
	IsPrivate bool              `json:"isPrivate,omitempty"`
	IsFile    bool              `json:"isFile,omitempty"`
	Reactions map[string]string `json:"reactions,omitempty"`
	ReadBy    []string          `json:"readBy,omitempty"`
	File      *FileAttachment   `json:"file,omitempty"`
}

// FileAttachment holds an inline attachment on a file message.
type FileAttachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"` // base64-encoded payload
	URL  string `json:"url,omitempty"`
}

// Clone returns a deep copy so callers can hold a message without
// observing later in-place reaction or read-receipt mutations.
func (m Message) Clone() Message {
	out := m
	if m.Reactions != nil {
		out.Reactions = make(map[string]string, len(m.Reactions))
		for user, symbol := range m.Reactions {
			out.Reactions[user] = symbol
		}
	}
	if m.ReadBy != nil {
		out.ReadBy = append([]string(nil), m.ReadBy...)
	}
	if m.File != nil {
		file := *m.File
		out.File = &file
	}
	return out
}
