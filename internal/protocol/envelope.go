package protocol

import "time"

// EventType enumerates the events exchanged between clients and the hub.
type EventType string

// Inbound events consumed by the event router.
const (
	EventUserJoin       EventType = "user_join"
	EventSendMessage    EventType = "send_message"
	EventTyping         EventType = "typing"
	EventPrivateMessage EventType = "private_message"
	EventReactMessage   EventType = "react_message"
	EventMessageRead    EventType = "message_read"
	EventFileMessage    EventType = "file_message"
)

// Outbound events produced by the event router.
const (
	EventUsernameError     EventType = "username_error"
	EventUserList          EventType = "user_list"
	EventUserJoined        EventType = "user_joined"
	EventReceiveMessage    EventType = "receive_message"
	EventTypingUsers       EventType = "typing_users"
	EventMessageReaction   EventType = "message_reaction"
	EventMessageReadUpdate EventType = "message_read_update"
	EventUserLeft          EventType = "user_left"
	EventAck               EventType = "ack"
)

// Envelope wraps every event sent over the wire.
type Envelope struct {
	ID        string      `json:"id"`
	Event     EventType   `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserProfile describes a joined connection as broadcast in rosters.
type UserProfile struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// AckPayload acknowledges an inbound envelope back to its sender.
// ReferenceID echoes the id of the envelope being acknowledged.
type AckPayload struct {
	ReferenceID string `json:"reference_id"`
	Delivered   bool   `json:"delivered"`
	MessageID   int64  `json:"messageId,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// SendMessageRequest carries the body of a public chat message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// PrivateMessageRequest addresses a message to a single connection.
type PrivateMessageRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// ReactRequest sets the sender's reaction on a stored message.
type ReactRequest struct {
	MessageID int64  `json:"messageId"`
	Reaction  string `json:"reaction"`
}

// ReadRequest marks a stored message as read by the sender.
type ReadRequest struct {
	MessageID int64 `json:"messageId"`
}

// FileMessageRequest carries a small file attachment with an optional caption.
type FileMessageRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Data    string `json:"data"` // base64-encoded payload
	URL     string `json:"url,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// ReactionUpdate broadcasts the full reaction mapping of a message.
type ReactionUpdate struct {
	MessageID int64             `json:"messageId"`
	Reactions map[string]string `json:"reactions"`
}

// ReadUpdate broadcasts the full reader list of a message.
type ReadUpdate struct {
	MessageID int64    `json:"messageId"`
	ReadBy    []string `json:"readBy"`
}
