package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/isdelr/notes-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestHub_BroadcastsToAllAndSubscribers(t *testing.T) {
	hub := startHub(t)

	all := NewClient(hub, nil, "")
	alice := NewClient(hub, nil, "alice")
	bob := NewClient(hub, nil, "bob")
	hub.Join(all)
	hub.Join(alice)
	hub.Join(bob)

	hub.PublishNote(ActionNoteCreated, models.Note{ID: "n1", Content: "hi", UserID: "alice"})

	msg := receive(t, all)
	assert.Equal(t, ActionNoteCreated, msg.Action)
	msg = receive(t, alice)
	assert.Equal(t, ActionNoteCreated, msg.Action)
	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "n1", payload["id"])

	select {
	case <-bob.Send:
		t.Fatal("bob should not see alice's notes")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_FilterAfterReconnect(t *testing.T) {
	hub := startHub(t)

	first := NewClient(hub, nil, "alice")
	hub.Join(first)
	hub.Leave(first)

	second := NewClient(hub, nil, "alice")
	bob := NewClient(hub, nil, "bob")
	hub.Join(second)
	hub.Join(bob)

	hub.PublishNote(ActionNoteUpdated, models.Note{ID: "n2", UserID: "alice"})
	assert.Equal(t, ActionNoteUpdated, receive(t, second).Action)

	_, ok := <-first.Send
	assert.False(t, ok)

	select {
	case <-bob.Send:
		t.Fatal("bob should not see alice's notes")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_LeaveClosesSend(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, "")
	hub.Join(c)
	hub.Leave(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHub_Reply(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, "")
	hub.Join(c)

	c.Reply(NewPongMessage())
	assert.Equal(t, ActionPong, receive(t, c).Action)
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		c := NewClient(hub, nil, "")
		hub.Join(c)
		for i := 0; i < 100; i++ {
			hub.PublishNote(ActionNoteDeleted, models.Note{ID: "x"})
		}
		hub.Leave(c)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after stop")
	}
}

func TestNewErrorMessage(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal(NewErrorMessage("bad"), &msg))
	assert.Equal(t, ActionError, msg.Action)
	assert.Equal(t, map[string]interface{}{"error": "bad"}, msg.Payload)
}
