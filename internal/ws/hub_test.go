package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublish(t *testing.T) {
	hub := NewHub()
	client := &Client{Email: "staff@example.com", Send: make(chan []byte, 4)}
	hub.Register(client)

	hub.Publish("application.paid", "app-1", map[string]interface{}{"intent_id": "pi_123"})

	select {
	case payload := <-client.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.Equal(t, "application.paid", ev.Type)
		assert.Equal(t, "app-1", ev.ApplicationID)
		assert.Equal(t, "pi_123", ev.Data["intent_id"])
		assert.False(t, ev.At.IsZero())
	default:
		t.Fatal("registered client received nothing")
	}
}

func TestHubPublish_SkipsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{Send: make(chan []byte)} // unbuffered, nobody reading
	fast := &Client{Send: make(chan []byte, 4)}
	hub.Register(slow)
	hub.Register(fast)

	// Must not block on the slow client.
	hub.Publish("application.created", "app-1", nil)

	select {
	case <-fast.Send:
	default:
		t.Fatal("fast client was starved by slow client")
	}
}

func TestClientClose_Unregisters(t *testing.T) {
	hub := NewHub()
	client := &Client{Send: make(chan []byte, 1)}
	hub.Register(client)
	client.Close()
	// Double close must not panic.
	client.Close()

	hub.Publish("application.created", "app-1", nil)
	_, open := <-client.Send
	assert.False(t, open)
}
