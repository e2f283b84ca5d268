package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lifegraph/pkg/types"
)

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	hub := NewWebSocketHub()
	defer hub.Stop()

	ch, ok := hub.subscribe()
	require.True(t, ok)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Broadcast(NewTaggingActivity("mem:1", types.TaggingCompleted))

	var msg ActivityMessage
	require.NoError(t, json.Unmarshal(<-ch, &msg))
	assert.Equal(t, "tagging", msg.Type)
	assert.Equal(t, "mem:1", msg.ID)
	assert.Equal(t, types.TaggingCompleted, msg.Status)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewWebSocketHub()
	defer hub.Stop()

	ch, ok := hub.subscribe()
	require.True(t, ok)

	// Overflow the 64-slot buffer; the client must be evicted, not block.
	for i := 0; i < 70; i++ {
		hub.Broadcast(NewActivity("person_created", "per:x"))
	}

	assert.Equal(t, 0, hub.ClientCount())

	// Channel was closed on eviction; drain to the close.
	closed := false
	for !closed {
		select {
		case _, open := <-ch:
			if !open {
				closed = true
			}
		default:
			t.Fatal("expected channel to be closed")
		}
	}
}

func TestHub_StopRejectsNewSubscribers(t *testing.T) {
	hub := NewWebSocketHub()
	hub.Stop()

	_, ok := hub.subscribe()
	assert.False(t, ok)

	// Broadcast after stop must not panic.
	hub.Broadcast(NewActivity("person_created", "per:x"))
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	hub := NewWebSocketHub()
	defer hub.Stop()

	ch, _ := hub.subscribe()
	hub.unsubscribe(ch)
	hub.unsubscribe(ch)
	assert.Equal(t, 0, hub.ClientCount())
}
