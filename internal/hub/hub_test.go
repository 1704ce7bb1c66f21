package hub

import (
	"context"
	"encoding/json"
	"testing"

	"socialnet/backend/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyRecipients(t *testing.T) {
	h := NewHub()
	bob := h.Subscribe(2, 4)
	bobPhone := h.Subscribe(2, 4)
	carol := h.Subscribe(3, 4)

	h.Publish(context.Background(), events.New(events.MessageNew, map[string]string{"content": "hi"}, 2))

	for _, c := range []Client{bob, bobPhone} {
		select {
		case raw := <-c:
			var got Event
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, events.MessageNew, got.Type)
			assert.Equal(t, map[string]interface{}{"content": "hi"}, got.Payload)
		default:
			t.Fatal("expected an event")
		}
	}
	assert.Len(t, carol, 0)
}

func TestUnsubscribeClosesAndForgets(t *testing.T) {
	h := NewHub()
	c := h.Subscribe(1, 1)
	assert.Equal(t, 1, h.Online(1))

	h.Unsubscribe(1, c)
	_, open := <-c
	assert.False(t, open)
	assert.Equal(t, 0, h.Online(1))

	// Second unsubscribe must not close twice.
	h.Unsubscribe(1, c)
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	h := NewHub()
	c := h.Subscribe(1, 1)

	h.Send(1, Event{Type: "a"})
	h.Send(1, Event{Type: "b"})

	assert.Len(t, c, 1)
}
