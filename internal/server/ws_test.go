package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubbubchat/hubbub/internal/protocol"
)

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) emit(event protocol.EventType, payload interface{}) string {
	c.t.Helper()

	env := protocol.Envelope{
		ID:        uuid.NewString(),
		Event:     event,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	require.NoError(c.t, c.conn.WriteJSON(env))
	return env.ID
}

// expect reads envelopes until one matches the event, failing the test
// if it does not arrive within the deadline. Envelopes for other events
// are discarded.
func (c *wsClient) expect(event protocol.EventType) protocol.Envelope {
	c.t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		var env protocol.Envelope
		require.NoError(c.t, c.conn.ReadJSON(&env), "waiting for %s", event)
		if env.Event == event {
			return env
		}
	}
}

func TestWebsocketChatScenario(t *testing.T) {
	s := New(testConfig(), zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	alice := dialWS(t, ts)
	bob := dialWS(t, ts)

	alice.emit(protocol.EventUserJoin, "alice")
	joined, err := protocol.DecodeUserProfile(alice.expect(protocol.EventUserJoined).Payload)
	require.NoError(t, err)
	assert.Equal(t, "alice", joined.Username)

	bob.emit(protocol.EventUserJoin, "bob")
	roster, err := protocol.DecodeUserList(bob.expect(protocol.EventUserList).Payload)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "alice", roster[0].Username)
	assert.Equal(t, "bob", roster[1].Username)

	// Public message: broadcast to bob, ack to alice.
	ref := alice.emit(protocol.EventSendMessage, protocol.SendMessageRequest{Message: "hi"})

	received, err := protocol.DecodeMessage(bob.expect(protocol.EventReceiveMessage).Payload)
	require.NoError(t, err)
	assert.Equal(t, "alice", received.Sender)
	assert.Equal(t, "hi", received.Body)

	ack, err := protocol.DecodeAck(alice.expect(protocol.EventAck).Payload)
	require.NoError(t, err)
	assert.Equal(t, ref, ack.ReferenceID)
	assert.True(t, ack.Delivered)
	assert.Equal(t, received.ID, ack.MessageID)
}

func TestWebsocketDuplicateUsername(t *testing.T) {
	s := New(testConfig(), zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	alice := dialWS(t, ts)
	alice.emit(protocol.EventUserJoin, "alice")
	alice.expect(protocol.EventUserJoined)

	imposter := dialWS(t, ts)
	imposter.emit(protocol.EventUserJoin, "alice")

	reason, err := protocol.DecodeString(imposter.expect(protocol.EventUsernameError).Payload)
	require.NoError(t, err)
	assert.Equal(t, "Username is already taken.", reason)

	// The connection stays open for a retry.
	imposter.emit(protocol.EventUserJoin, "alice2")
	imposter.expect(protocol.EventUserJoined)
}

func TestWebsocketPrivateMessage(t *testing.T) {
	s := New(testConfig(), zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	alice := dialWS(t, ts)
	alice.emit(protocol.EventUserJoin, "alice")
	alice.expect(protocol.EventUserJoined)

	bob := dialWS(t, ts)
	bob.emit(protocol.EventUserJoin, "bob")
	bobProfile, err := protocol.DecodeUserProfile(bob.expect(protocol.EventUserJoined).Payload)
	require.NoError(t, err)

	alice.emit(protocol.EventPrivateMessage, protocol.PrivateMessageRequest{
		To:      bobProfile.ID,
		Message: "secret",
	})

	got, err := protocol.DecodeMessage(bob.expect(protocol.EventPrivateMessage).Payload)
	require.NoError(t, err)
	assert.True(t, got.IsPrivate)
	assert.Equal(t, "secret", got.Body)

	echo, err := protocol.DecodeMessage(alice.expect(protocol.EventPrivateMessage).Payload)
	require.NoError(t, err)
	assert.Equal(t, "secret", echo.Body)

	// Not retained in the shared history.
	assert.Zero(t, s.log.Len())
}

func TestWebsocketDisconnectBroadcast(t *testing.T) {
	s := New(testConfig(), zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	alice := dialWS(t, ts)
	alice.emit(protocol.EventUserJoin, "alice")
	alice.expect(protocol.EventUserJoined)

	bob := dialWS(t, ts)
	bob.emit(protocol.EventUserJoin, "bob")
	bob.expect(protocol.EventUserJoined)

	alice.emit(protocol.EventTyping, true)
	typists, err := protocol.DecodeStringList(bob.expect(protocol.EventTypingUsers).Payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, typists)

	require.NoError(t, alice.conn.Close())

	left, err := protocol.DecodeUserProfile(bob.expect(protocol.EventUserLeft).Payload)
	require.NoError(t, err)
	assert.Equal(t, "alice", left.Username)

	typists, err = protocol.DecodeStringList(bob.expect(protocol.EventTypingUsers).Payload)
	require.NoError(t, err)
	assert.Empty(t, typists)
}
