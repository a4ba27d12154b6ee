package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubbubchat/hubbub/internal/protocol"
)

func TestHubBroadcastReachesAll(t *testing.T) {
	h := NewHub()

	chans := make([]chan protocol.Envelope, 3)
	for i := range chans {
		chans[i] = make(chan protocol.Envelope, 8)
		h.Register(string(rune('a'+i)), chans[i])
	}

	h.Broadcast(protocol.Envelope{Event: protocol.EventReceiveMessage})

	for i, ch := range chans {
		select {
		case env := <-ch:
			assert.Equal(t, protocol.EventReceiveMessage, env.Event)
		default:
			t.Fatalf("subscriber %d missed broadcast", i)
		}
	}
}

func TestHubBroadcastSkipsFullBuffers(t *testing.T) {
	h := NewHub()

	full := make(chan protocol.Envelope, 1)
	healthy := make(chan protocol.Envelope, 8)
	h.Register("full", full)
	h.Register("healthy", healthy)

	full <- protocol.Envelope{Event: protocol.EventUserList} // occupy the buffer

	// Must not block, and must still reach the healthy subscriber.
	h.Broadcast(protocol.Envelope{Event: protocol.EventReceiveMessage})

	require.Len(t, healthy, 1)
	assert.Len(t, full, 1)
}

func TestHubSendTo(t *testing.T) {
	h := NewHub()

	ch := make(chan protocol.Envelope, 8)
	h.Register("conn-1", ch)

	assert.True(t, h.SendTo("conn-1", protocol.Envelope{Event: protocol.EventAck}))
	assert.Len(t, ch, 1)

	assert.False(t, h.SendTo("unknown", protocol.Envelope{Event: protocol.EventAck}))
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	h := NewHub()

	ch := make(chan protocol.Envelope, 8)
	h.Register("conn-1", ch)
	h.Unregister("conn-1")
	h.Unregister("conn-1") // idempotent

	h.Broadcast(protocol.Envelope{Event: protocol.EventReceiveMessage})
	assert.Empty(t, ch)
	assert.Zero(t, h.Len())
}
