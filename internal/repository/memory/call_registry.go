package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// LiveCall is the handle the registry keeps for an in-flight call. The
// realtime coordinator satisfies it.
type LiveCall interface {
	SessionId() uuid.UUID
	UserId() uuid.UUID
	Shutdown(ctx context.Context) error
}

type CallRegistry struct {
	cache *cache.Cache
}

func NewCallRegistry() *CallRegistry {
	// The TTL is a leak guard only: calls are removed explicitly when they
	// end. Anything still here after 4 hours was orphaned.
	c := cache.New(4*time.Hour, 10*time.Minute)
	return &CallRegistry{
		cache: c,
	}
}

func (r *CallRegistry) Save(call LiveCall) {
	r.cache.Set(call.SessionId().String(), call, cache.DefaultExpiration)
}

func (r *CallRegistry) Get(sessionId uuid.UUID) (LiveCall, bool) {
	if x, found := r.cache.Get(sessionId.String()); found {
		return x.(LiveCall), true
	}
	return nil, false
}

func (r *CallRegistry) Delete(sessionId uuid.UUID) {
	r.cache.Delete(sessionId.String())
}

// FindByUser returns every live call owned by a user. Used by the sign-out
// sweep to tear down connections before the database rows are ended.
func (r *CallRegistry) FindByUser(userId uuid.UUID) []LiveCall {
	var calls []LiveCall
	for _, item := range r.cache.Items() {
		call, ok := item.Object.(LiveCall)
		if !ok {
			continue
		}
		if call.UserId() == userId {
			calls = append(calls, call)
		}
	}
	return calls
}
