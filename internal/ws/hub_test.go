package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/logger"
)

func init() {
	logger.Silence()
}

func newTestClient(h *Hub, userID uuid.UUID) *Client {
	return &Client{hub: h, userID: userID, send: make(chan []byte, 4)}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func receive(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "channel closed")
		var env envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no message")
	}
	return envelope{}
}

func TestHub_PublishReachesOnlyOwner(t *testing.T) {
	h, _ := startHub(t)
	alice, bob := uuid.New(), uuid.New()
	a1, a2, b := newTestClient(h, alice), newTestClient(h, alice), newTestClient(h, bob)
	h.Register(a1)
	h.Register(a2)
	h.Register(b)
	require.Eventually(t, func() bool { return h.Connected(alice) == 2 }, time.Second, 5*time.Millisecond)

	h.Publish(alice, "proposal.created", map[string]string{"id": "1"})

	assert.Equal(t, "proposal.created", receive(t, a1).Type)
	assert.Equal(t, "proposal.created", receive(t, a2).Type)
	select {
	case <-b.send:
		t.Fatal("bob must not receive alice's event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h, _ := startHub(t)
	userID := uuid.New()
	c := newTestClient(h, userID)
	h.Register(c)
	h.Unregister(c)

	require.Eventually(t, func() bool { return h.Connected(userID) == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHub_SlowClientDropped(t *testing.T) {
	h, _ := startHub(t)
	userID := uuid.New()
	c := &Client{hub: h, userID: userID, send: make(chan []byte)}
	h.Register(c)
	require.Eventually(t, func() bool { return h.Connected(userID) == 1 }, time.Second, 5*time.Millisecond)

	h.Publish(userID, "template.created", nil)
	require.Eventually(t, func() bool { return h.Connected(userID) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	h, cancel := startHub(t)
	c := newTestClient(h, uuid.New())
	h.Register(c)
	cancel()

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client not closed")
	}
}
