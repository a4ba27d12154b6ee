package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hubbubchat/hubbub/internal/config"
	"github.com/hubbubchat/hubbub/internal/protocol"
)

// Session manages the client side of the websocket connection to the
// hub server.
type Session struct {
	cfg       config.ClientConfig
	conn      *websocket.Conn
	events    chan protocol.Envelope
	closed    chan struct{}
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewSession initializes a session with configuration.
func NewSession(cfg config.ClientConfig) *Session {
	return &Session{
		cfg:    cfg,
		events: make(chan protocol.Envelope, 64),
		closed: make(chan struct{}),
	}
}

// Connect dials the server and starts the read loop.
func (s *Session) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.cfg.ServerURL, nil)
	if err != nil {
		return err
	}
	s.conn = conn
	go s.readLoop()
	return nil
}

// Events yields envelopes received from the server.
func (s *Session) Events() <-chan protocol.Envelope {
	return s.events
}

// Closed is closed when the connection goes away.
func (s *Session) Closed() <-chan struct{} {
	return s.closed
}

// Send dispatches an event envelope to the server and returns its id.
func (s *Session) Send(event protocol.EventType, payload interface{}) (string, error) {
	env := protocol.Envelope{
		ID:        uuid.NewString(),
		Event:     event,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(env); err != nil {
		return "", err
	}
	return env.ID, nil
}

// Close terminates the session.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.conn != nil {
			err = s.conn.Close()
		}
	})
	return err
}

func (s *Session) readLoop() {
	defer s.Close()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		select {
		case s.events <- env:
		case <-s.closed:
			return
		}
	}
}
