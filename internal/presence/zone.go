package presence

import (
	"fmt"
	"sync"
)

// Zone is a top-level namespace grouping room groups on a server. It keeps
// a flat ID-indexed view of every room it currently owns; the index and the
// per-group room maps always agree, because groups update both inside one
// critical section.
type Zone struct {
	name string

	mu         sync.RWMutex
	active     bool
	groupOrder []string
	groups     map[string]*RoomGroup
	rooms      map[int32]*Room

	ids       *RoomIDAllocator
	publisher Publisher
	resolvers *ResolverRegistry
}

func newZone(name string, ids *RoomIDAllocator, pub Publisher, resolvers *ResolverRegistry) *Zone {
	return &Zone{
		name:      name,
		groups:    make(map[string]*RoomGroup),
		rooms:     make(map[int32]*Room),
		ids:       ids,
		publisher: pub,
		resolvers: resolvers,
	}
}

// Name returns the zone name, unique across the registry.
func (z *Zone) Name() string { return z.name }

// Activate marks the zone active. The flag is consumed by matchmaking and
// listing layers; it has no further behavior here.
func (z *Zone) Activate() {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.active = true
}

// Deactivate clears the active flag.
func (z *Zone) Deactivate() {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.active = false
}

// IsActive reports the zone's active flag.
func (z *Zone) IsActive() bool {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.active
}

// AddRoomGroup creates and registers a room group. Fails with
// ErrDuplicateName if the zone already has a group with that name.
func (z *Zone) AddRoomGroup(name string) (*RoomGroup, error) {
	z.mu.Lock()
	if _, exists := z.groups[name]; exists {
		z.mu.Unlock()
		return nil, fmt.Errorf("zone %q group %q: %w", z.name, name, ErrDuplicateName)
	}
	g := newRoomGroup(name, z)
	z.groups[name] = g
	z.groupOrder = append(z.groupOrder, name)
	ev := Event{
		Type:  EventGroupCreated,
		Zone:  z.name,
		Group: name,
	}
	z.mu.Unlock()

	publish(z.publisher, []Event{ev})
	return g, nil
}

// RemoveRoomGroup unregisters the named group, desubscribes every
// subscribed player (with the full room-eviction cascade), and removes
// every room the group owns. No-op if the group is not present.
func (z *Zone) RemoveRoomGroup(name string) {
	z.mu.Lock()
	g, exists := z.groups[name]
	if !exists {
		z.mu.Unlock()
		return
	}
	delete(z.groups, name)
	for i, n := range z.groupOrder {
		if n == name {
			z.groupOrder = append(z.groupOrder[:i], z.groupOrder[i+1:]...)
			break
		}
	}
	z.mu.Unlock()

	for _, p := range g.Subscribers() {
		g.DesubscribePlayer(p)
	}
	for _, roomName := range g.RoomNames() {
		g.RemoveRoom(roomName)
	}

	publish(z.publisher, []Event{{
		Type:  EventGroupDeleted,
		Zone:  z.name,
		Group: name,
	}})
}

// RoomGroup returns the named group, or nil if absent.
func (z *Zone) RoomGroup(name string) *RoomGroup {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.groups[name]
}

// RoomGroupNames returns the zone's group names in creation order.
func (z *Zone) RoomGroupNames() []string {
	z.mu.RLock()
	defer z.mu.RUnlock()
	out := make([]string, len(z.groupOrder))
	copy(out, z.groupOrder)
	return out
}

// RoomByID returns the room with the given ID from the zone's flat index,
// or nil if absent.
func (z *Zone) RoomByID(id int32) *Room {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.rooms[id]
}

// Rooms returns every room in the zone, across all groups.
func (z *Zone) Rooms() []*Room {
	z.mu.RLock()
	defer z.mu.RUnlock()
	out := make([]*Room, 0, len(z.rooms))
	for _, r := range z.rooms {
		out = append(out, r)
	}
	return out
}

// RoomCount returns the number of rooms in the zone's flat index.
func (z *Zone) RoomCount() int {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return len(z.rooms)
}

// registerRoom inserts r into the zone's flat index. Called by a group
// while holding its own lock; lock order is always group then zone.
func (z *Zone) registerRoom(r *Room) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.rooms[r.id] = r
}

// unregisterRoom drops the room with the given ID from the flat index.
func (z *Zone) unregisterRoom(id int32) {
	z.mu.Lock()
	defer z.mu.Unlock()
	delete(z.rooms, id)
}
