package hub

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hubbubchat/hubbub/internal/history"
	"github.com/hubbubchat/hubbub/internal/metrics"
	"github.com/hubbubchat/hubbub/internal/protocol"
)

// Router validates inbound events, mutates the shared stores, and emits
// the resulting broadcasts and targeted replies. Acknowledgments for
// send and file messages are the synchronous return values of the
// corresponding methods; the transport turns them into ack envelopes.
//
// Events from one connection must be dispatched in arrival order; across
// connections the router runs handlers concurrently and relies on the
// stores' own locking.
type Router struct {
	registry *Registry
	typing   *TypingSet
	log      *history.Log
	hub      *Hub
	logger   zerolog.Logger
}

// NewRouter wires the router to its stores and the broadcast hub.
func NewRouter(registry *Registry, typing *TypingSet, log *history.Log, hub *Hub, logger zerolog.Logger) *Router {
	return &Router{
		registry: registry,
		typing:   typing,
		log:      log,
		hub:      hub,
		logger:   logger.With().Str("component", "router").Logger(),
	}
}

// Join registers the connection under the requested display name. On
// success the full roster and a join notice go out to every connection;
// on rejection only the offending connection hears about it and may
// retry.
func (rt *Router) Join(connID, username string) error {
	profile, err := rt.registry.Join(connID, username)
	if err != nil {
		rt.hub.SendTo(connID, newEnvelope(protocol.EventUsernameError, usernameErrorReason(err)))
		rt.logger.Warn().Str("conn", connID).Str("username", username).Err(err).Msg("join rejected")
		return err
	}

	rt.broadcast(protocol.EventUserList, rt.registry.List())
	rt.broadcast(protocol.EventUserJoined, profile)
	rt.logger.Info().Str("conn", connID).Str("username", profile.Username).Msg("user joined")
	return nil
}

// SendMessage appends a public chat message to the log, broadcasts it,
// and returns the stored record for the sender's delivery ack.
func (rt *Router) SendMessage(connID, body string) protocol.Message {
	msg := rt.log.Append(protocol.Message{
		Sender:   rt.registry.DisplayNameOf(connID),
		SenderID: connID,
		Body:     body,
		Kind:     protocol.MessageKindChat,
	})
	metrics.MessagesTotal.WithLabelValues(string(protocol.MessageKindChat)).Inc()

	rt.broadcast(protocol.EventReceiveMessage, msg)
	return msg
}

// Typing updates the typing set and broadcasts the full typist-name
// snapshot, so receivers self-heal from out-of-order delivery. Typing
// signals from unjoined connections are ignored.
func (rt *Router) Typing(connID string, isTyping bool) {
	if _, ok := rt.registry.Lookup(connID); !ok {
		return
	}
	rt.typing.SetTyping(connID, isTyping)
	rt.broadcastTypists()
}

// PrivateMessage delivers a message to one recipient and echoes it back
// to the sender. Private messages are not retained in the shared log,
// and delivery to a dead target is silently dropped.
func (rt *Router) PrivateMessage(connID, to, body string) {
	msg := protocol.Message{
		ID:        time.Now().UnixMilli(),
		Sender:    rt.registry.DisplayNameOf(connID),
		SenderID:  connID,
		Body:      body,
		Timestamp: time.Now().UTC(),
		Kind:      protocol.MessageKindPrivate,
		IsPrivate: true,
	}

	env := newEnvelope(protocol.EventPrivateMessage, msg)
	if !rt.hub.SendTo(to, env) {
		rt.logger.Debug().Str("conn", connID).Str("to", to).Msg("private message target gone")
	}
	rt.hub.SendTo(connID, env)
}

// React sets the sender's reaction on a stored message; the last
// reaction per display name wins. Reactions on evicted ids are dropped
// without a broadcast.
func (rt *Router) React(connID string, messageID int64, symbol string) {
	reactions := rt.log.AddReaction(messageID, rt.registry.DisplayNameOf(connID), symbol)
	if reactions == nil {
		return
	}
	rt.broadcast(protocol.EventMessageReaction, protocol.ReactionUpdate{
		MessageID: messageID,
		Reactions: reactions,
	})
}

// MarkRead records a read receipt. Only the first receipt per reader
// triggers a broadcast; repeats and evicted ids stay silent.
func (rt *Router) MarkRead(connID string, messageID int64) {
	readBy, changed := rt.log.MarkRead(messageID, rt.registry.DisplayNameOf(connID))
	if readBy == nil || !changed {
		return
	}
	rt.broadcast(protocol.EventMessageReadUpdate, protocol.ReadUpdate{
		MessageID: messageID,
		ReadBy:    readBy,
	})
}

// FileMessage appends a file message (retained, unlike private
// messages), broadcasts it, and returns the stored record for the
// sender's delivery ack.
func (rt *Router) FileMessage(connID string, req protocol.FileMessageRequest) protocol.Message {
	msg := rt.log.Append(protocol.Message{
		Sender:   rt.registry.DisplayNameOf(connID),
		SenderID: connID,
		Body:     req.Caption,
		Kind:     protocol.MessageKindFile,
		IsFile:   true,
		File: &protocol.FileAttachment{
			Name: req.Name,
			Type: req.Type,
			Data: req.Data,
			URL:  req.URL,
		},
	})
	metrics.MessagesTotal.WithLabelValues(string(protocol.MessageKindFile)).Inc()

	rt.broadcast(protocol.EventFileMessage, msg)
	return msg
}

// Disconnect tears down the connection's registry and typing entries and
// tells the remaining connections. Idempotent, and terminal as far as
// the transport is concerned.
func (rt *Router) Disconnect(connID string) {
	profile, ok := rt.registry.Leave(connID)
	rt.typing.Clear(connID)

	if ok {
		rt.broadcast(protocol.EventUserLeft, profile)
		rt.logger.Info().Str("conn", connID).Str("username", profile.Username).Msg("user left")
	}
	rt.broadcast(protocol.EventUserList, rt.registry.List())
	rt.broadcastTypists()
}

func (rt *Router) broadcastTypists() {
	conns := rt.typing.Connections()
	names := make([]string, 0, len(conns))
	for _, id := range conns {
		names = append(names, rt.registry.DisplayNameOf(id))
	}
	rt.broadcast(protocol.EventTypingUsers, names)
}

func (rt *Router) broadcast(event protocol.EventType, payload interface{}) {
	rt.hub.Broadcast(newEnvelope(event, payload))
	metrics.BroadcastsTotal.Inc()
}

func usernameErrorReason(err error) string {
	if errors.Is(err, ErrNameTaken) {
		return "Username is already taken."
	}
	return "Invalid username."
}

func newEnvelope(event protocol.EventType, payload interface{}) protocol.Envelope {
	return protocol.Envelope{
		ID:        uuid.NewString(),
		Event:     event,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
