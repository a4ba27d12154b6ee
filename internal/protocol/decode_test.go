package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelopes arrive as raw JSON, so payloads reach the decoders as
// generic maps with float64 numbers; the decoders must recover the
// typed requests from that shape.
func TestDecodeFromWireShapes(t *testing.T) {
	var env Envelope
	raw := `{"id":"e1","event":"react_message","payload":{"messageId":1700000000123,"reaction":"👍"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &env))

	req, err := DecodeReact(env.Payload)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), req.MessageID)
	assert.Equal(t, "👍", req.Reaction)
}

func TestDecodeStringAndBool(t *testing.T) {
	name, err := DecodeString("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	_, err = DecodeString(42)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	isTyping, err := DecodeBool(true)
	require.NoError(t, err)
	assert.True(t, isTyping)

	_, err = DecodeBool("yes")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodeNilPayload(t *testing.T) {
	_, err := DecodeSendMessage(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestMessageCloneIsDeep(t *testing.T) {
	msg := Message{
		ID:        1,
		Reactions: map[string]string{"bob": "👍"},
		ReadBy:    []string{"alice"},
		File:      &FileAttachment{Name: "a.png"},
	}

	clone := msg.Clone()
	clone.Reactions["carol"] = "😂"
	clone.ReadBy[0] = "mallory"
	clone.File.Name = "b.png"

	assert.Equal(t, map[string]string{"bob": "👍"}, msg.Reactions)
	assert.Equal(t, []string{"alice"}, msg.ReadBy)
	assert.Equal(t, "a.png", msg.File.Name)
}
