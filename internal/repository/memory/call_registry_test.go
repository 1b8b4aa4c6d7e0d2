package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCall struct {
	sessionId uuid.UUID
	userId    uuid.UUID
	shutdowns int
}

func (c *stubCall) SessionId() uuid.UUID { return c.sessionId }
func (c *stubCall) UserId() uuid.UUID    { return c.userId }
func (c *stubCall) Shutdown(context.Context) error {
	c.shutdowns++
	return nil
}

func TestCallRegistry(t *testing.T) {
	registry := NewCallRegistry()
	userA := uuid.New()
	userB := uuid.New()

	callA1 := &stubCall{sessionId: uuid.New(), userId: userA}
	callA2 := &stubCall{sessionId: uuid.New(), userId: userA}
	callB := &stubCall{sessionId: uuid.New(), userId: userB}

	registry.Save(callA1)
	registry.Save(callA2)
	registry.Save(callB)

	t.Run("get by session id", func(t *testing.T) {
		got, ok := registry.Get(callA1.sessionId)
		require.True(t, ok)
		assert.Equal(t, callA1.sessionId, got.SessionId())

		_, ok = registry.Get(uuid.New())
		assert.False(t, ok)
	})

	t.Run("find by user returns only that user's calls", func(t *testing.T) {
		calls := registry.FindByUser(userA)
		assert.Len(t, calls, 2)

		calls = registry.FindByUser(userB)
		require.Len(t, calls, 1)
		assert.Equal(t, callB.sessionId, calls[0].SessionId())

		assert.Empty(t, registry.FindByUser(uuid.New()))
	})

	t.Run("delete removes the call", func(t *testing.T) {
		registry.Delete(callA1.sessionId)
		_, ok := registry.Get(callA1.sessionId)
		assert.False(t, ok)
		assert.Len(t, registry.FindByUser(userA), 1)
	})
}
