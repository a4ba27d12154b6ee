package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hubbubchat/hubbub/internal/metrics"
	"github.com/hubbubchat/hubbub/internal/protocol"
)

// session binds one websocket connection to the event router. The read
// pump dispatches inbound envelopes synchronously, which is what keeps
// events from a single connection in arrival order.
type session struct {
	id        string
	conn      *websocket.Conn
	srv       *Server
	send      chan protocol.Envelope
	logger    zerolog.Logger
	closeOnce sync.Once
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := &session{
		id:   uuid.NewString(),
		conn: conn,
		srv:  s,
		send: make(chan protocol.Envelope, s.cfg.SendBuffer),
	}
	sess.logger = s.logger.With().Str("conn", sess.id).Logger()

	s.hub.Register(sess.id, sess.send)
	metrics.Connections.Inc()
	sess.logger.Info().Str("remote", r.RemoteAddr).Msg("connected")

	go sess.writePump()
	sess.readPump()
}

func (s *session) readPump() {
	defer func() {
		s.teardown()
		s.srv.router.Disconnect(s.id)
		_ = s.conn.Close()
		metrics.Connections.Dec()
		s.logger.Info().Msg("disconnected")
	}()

	s.conn.SetReadLimit(s.srv.cfg.MaxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.srv.cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.srv.cfg.ReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn().Err(err).Msg("bad envelope")
			continue
		}
		s.dispatch(env)
	}
}

// dispatch routes one inbound envelope. Events that promise a delivery
// ack get one on success and a non-delivered ack on a malformed payload.
func (s *session) dispatch(env protocol.Envelope) {
	switch env.Event {
	case protocol.EventUserJoin:
		// A non-string payload falls through as an empty name, which the
		// registry rejects as invalid.
		name, _ := protocol.DecodeString(env.Payload)
		_ = s.srv.router.Join(s.id, name)

	case protocol.EventSendMessage:
		req, err := protocol.DecodeSendMessage(env.Payload)
		if err != nil {
			s.nack(env.ID)
			return
		}
		msg := s.srv.router.SendMessage(s.id, req.Message)
		s.ack(env.ID, msg.ID)

	case protocol.EventTyping:
		if isTyping, err := protocol.DecodeBool(env.Payload); err == nil {
			s.srv.router.Typing(s.id, isTyping)
		}

	case protocol.EventPrivateMessage:
		if req, err := protocol.DecodePrivateMessage(env.Payload); err == nil {
			s.srv.router.PrivateMessage(s.id, req.To, req.Message)
		}

	case protocol.EventReactMessage:
		if req, err := protocol.DecodeReact(env.Payload); err == nil {
			s.srv.router.React(s.id, req.MessageID, req.Reaction)
		}

	case protocol.EventMessageRead:
		if req, err := protocol.DecodeRead(env.Payload); err == nil {
			s.srv.router.MarkRead(s.id, req.MessageID)
		}

	case protocol.EventFileMessage:
		req, err := protocol.DecodeFileMessage(env.Payload)
		if err != nil {
			s.nack(env.ID)
			return
		}
		msg := s.srv.router.FileMessage(s.id, req)
		s.ack(env.ID, msg.ID)

	default:
		s.logger.Debug().Str("event", string(env.Event)).Msg("unhandled event")
	}
}

func (s *session) ack(referenceID string, messageID int64) {
	s.enqueue(protocol.Envelope{
		ID:        uuid.NewString(),
		Event:     protocol.EventAck,
		Timestamp: time.Now(),
		Payload: protocol.AckPayload{
			ReferenceID: referenceID,
			Delivered:   true,
			MessageID:   messageID,
		},
	})
}

func (s *session) nack(referenceID string) {
	s.enqueue(protocol.Envelope{
		ID:        uuid.NewString(),
		Event:     protocol.EventAck,
		Timestamp: time.Now(),
		Payload: protocol.AckPayload{
			ReferenceID: referenceID,
			Delivered:   false,
			Reason:      "invalid payload",
		},
	})
}

func (s *session) enqueue(env protocol.Envelope) {
	select {
	case s.send <- env:
	default:
	}
}

func (s *session) writePump() {
	pingPeriod := s.srv.cfg.ReadTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case env, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.srv.cfg.WriteTimeout))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.srv.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// teardown unregisters from the hub before closing the send channel, so
// no in-flight broadcast can write to a closed channel.
func (s *session) teardown() {
	s.closeOnce.Do(func() {
		s.srv.hub.Unregister(s.id)
		close(s.send)
	})
}
