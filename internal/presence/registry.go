package presence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pixil98/go-log"
)

// Registry is the top-level presence state: every zone on the server, the
// shared room-ID allocator, the event publisher, and the dynamic-variable
// resolver registry. All runtime state is memory-only; nothing survives a
// restart.
type Registry struct {
	mu    sync.RWMutex
	zones map[string]*Zone

	ids       *RoomIDAllocator
	publisher Publisher
	resolvers *ResolverRegistry
	users     *UserManager
}

// RegistryOpt configures a Registry.
type RegistryOpt func(*Registry)

// WithPublisher sets the lifecycle-event publisher. Defaults to discarding
// all events.
func WithPublisher(p Publisher) RegistryOpt {
	return func(r *Registry) { r.publisher = p }
}

// WithRoomIDAllocator supplies the room-ID allocator. Useful for tests that
// need deterministic IDs; defaults to a fresh allocator starting at 1.
func WithRoomIDAllocator(ids *RoomIDAllocator) RegistryOpt {
	return func(r *Registry) { r.ids = ids }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOpt) *Registry {
	r := &Registry{
		zones:     make(map[string]*Zone),
		ids:       NewRoomIDAllocator(),
		publisher: NopPublisher{},
		resolvers: NewResolverRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.users = NewUserManager(r.publisher)
	return r
}

// Resolvers returns the dynamic-variable resolver registry.
func (r *Registry) Resolvers() *ResolverRegistry {
	return r.resolvers
}

// Users returns the user/session manager.
func (r *Registry) Users() *UserManager {
	return r.users
}

// CreateZone registers a new zone. Fails with ErrDuplicateName if a zone
// with that name already exists. Zone names are case-sensitive.
func (r *Registry) CreateZone(name string) (*Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.zones[name]; exists {
		return nil, fmt.Errorf("zone %q: %w", name, ErrDuplicateName)
	}
	z := newZone(name, r.ids, r.publisher, r.resolvers)
	r.zones[name] = z
	return z, nil
}

// Zone returns the named zone, or nil if absent.
func (r *Registry) Zone(name string) *Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.zones[name]
}

// ZoneNames returns all zone names, sorted.
func (r *Registry) ZoneNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.zones))
	for name := range r.zones {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RemoveZone tears down the named zone: every group is removed with the
// full desubscription cascade, then the zone is dropped. No-op if absent.
func (r *Registry) RemoveZone(name string) {
	r.mu.Lock()
	z, exists := r.zones[name]
	if !exists {
		r.mu.Unlock()
		return
	}
	delete(r.zones, name)
	r.mu.Unlock()

	for _, groupName := range z.RoomGroupNames() {
		z.RemoveRoomGroup(groupName)
	}
}

// Tick logs a stats snapshot. Run periodically by the driver worker.
func (r *Registry) Tick(ctx context.Context) error {
	logger := log.GetLogger(ctx)

	r.mu.RLock()
	zones := len(r.zones)
	rooms := 0
	subscribers := 0
	for _, z := range r.zones {
		rooms += z.RoomCount()
		for _, gname := range z.RoomGroupNames() {
			if g := z.RoomGroup(gname); g != nil {
				subscribers += g.SubscriberCount()
			}
		}
	}
	r.mu.RUnlock()

	logger.Infof("presence: %d zones, %d rooms, %d subscriptions, %d sessions",
		zones, rooms, subscribers, r.users.Count())
	return nil
}
