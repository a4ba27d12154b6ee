package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypingSetInsertionOrder(t *testing.T) {
	ts := NewTypingSet()

	ts.SetTyping("conn-1", true)
	ts.SetTyping("conn-2", true)
	ts.SetTyping("conn-3", true)

	assert.Equal(t, []string{"conn-1", "conn-2", "conn-3"}, ts.Connections())
}

func TestTypingSetNoDuplicates(t *testing.T) {
	ts := NewTypingSet()

	ts.SetTyping("conn-1", true)
	ts.SetTyping("conn-1", true)

	assert.Equal(t, []string{"conn-1"}, ts.Connections())
}

func TestTypingSetStopRemoves(t *testing.T) {
	ts := NewTypingSet()

	ts.SetTyping("conn-1", true)
	ts.SetTyping("conn-2", true)
	ts.SetTyping("conn-1", false)

	assert.Equal(t, []string{"conn-2"}, ts.Connections())
}

func TestTypingSetClearIdempotent(t *testing.T) {
	ts := NewTypingSet()

	ts.SetTyping("conn-1", true)
	ts.Clear("conn-1")
	ts.Clear("conn-1")
	ts.Clear("never-typed")

	assert.Empty(t, ts.Connections())
}
