package websocket

import (
	"testing"
	"time"

	"neuraconnect-be/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func (h *Hub) clientCount(userId uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userId])
}

func TestHubDeliversToConnectedClients(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userId := uuid.New()
	client := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 4)}
	hub.register <- client

	hub.Send(userId, realtime.OutboundEvent{Type: realtime.OutboundSpeaking})

	select {
	case data := <-client.Send:
		assert.Contains(t, string(data), realtime.OutboundSpeaking)
	case <-time.After(time.Second):
		t.Fatal("event never reached the client")
	}

	// Other users' sockets stay quiet.
	other := &Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte, 4)}
	hub.register <- other
	hub.Send(userId, realtime.OutboundEvent{Type: realtime.OutboundTranscript})
	assert.Empty(t, other.Send)
}

func TestHubDropsSlowClientWithoutCrashing(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userId := uuid.New()
	// Unbuffered and never read: every send hits the full-buffer branch.
	slow := &Client{Hub: hub, UserID: userId, Send: make(chan []byte)}
	hub.register <- slow

	assert.NotPanics(t, func() {
		hub.Send(userId, realtime.OutboundEvent{Type: realtime.OutboundSpeaking})
	})

	// The hub unregisters the client and closes its channel exactly once.
	require.Eventually(t, func() bool {
		return hub.clientCount(userId) == 0
	}, time.Second, 10*time.Millisecond)

	select {
	case _, open := <-slow.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}

	// Further sends for the user are a no-op, not a crash.
	assert.NotPanics(t, func() {
		hub.Send(userId, realtime.OutboundEvent{Type: realtime.OutboundSpeaking})
	})
}

func TestHubBroadcastDropsSlowClients(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	healthyUser := uuid.New()
	healthy := &Client{Hub: hub, UserID: healthyUser, Send: make(chan []byte, 4)}
	slow := &Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte)}
	hub.register <- healthy
	hub.register <- slow

	assert.NotPanics(t, func() {
		hub.Broadcast(realtime.OutboundEvent{Type: realtime.OutboundNotification})
	})

	select {
	case data := <-healthy.Send:
		assert.Contains(t, string(data), realtime.OutboundNotification)
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the healthy client")
	}

	require.Eventually(t, func() bool {
		return hub.clientCount(slow.UserID) == 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.clientCount(healthyUser))
}
