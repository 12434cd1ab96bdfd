package presence

import (
	"sync"

	"github.com/pixil98/go-presence/internal/wire"
)

// Resolver computes the current value of a dynamic room variable. It is
// invoked synchronously on the goroutine that is encoding the room, just
// before the variable is written, so a slow resolver blocks that encode.
type Resolver func(zone, group string, room *Room, key string) (wire.Value, error)

// ResolverRegistry maps dynamic-variable resolution keys to resolvers.
// One registry is shared across a presence Registry.
type ResolverRegistry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

// NewResolverRegistry returns an empty registry.
func NewResolverRegistry() *ResolverRegistry {
	return &ResolverRegistry{resolvers: make(map[string]Resolver)}
}

// Register installs the resolver for key, replacing any previous one.
func (rr *ResolverRegistry) Register(key string, r Resolver) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.resolvers[key] = r
}

// Deregister removes the resolver for key, if any.
func (rr *ResolverRegistry) Deregister(key string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	delete(rr.resolvers, key)
}

// Lookup returns the resolver for key. Returns (nil, false) if none is
// registered.
func (rr *ResolverRegistry) Lookup(key string) (Resolver, bool) {
	if rr == nil {
		return nil, false
	}
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	r, ok := rr.resolvers[key]
	return r, ok
}
