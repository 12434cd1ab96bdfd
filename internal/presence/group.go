package presence

import (
	"fmt"
	"sync"
)

// RoomGroup is a named collection of rooms within a zone and the unit of
// player subscription. The group exclusively owns its rooms and its
// subscriber list; players are referenced, never owned.
type RoomGroup struct {
	name string
	zone *Zone // navigation and flat-index registration only

	mu          sync.RWMutex
	roomOrder   []string
	rooms       map[string]*Room
	subscribers []Player
}

func newRoomGroup(name string, zone *Zone) *RoomGroup {
	return &RoomGroup{
		name:  name,
		zone:  zone,
		rooms: make(map[string]*Room),
	}
}

// Name returns the group name, unique within its owning zone.
func (g *RoomGroup) Name() string { return g.name }

// ZoneName returns the name of the owning zone.
func (g *RoomGroup) ZoneName() string { return g.zone.name }

// RoomSettings describes a room to create. Zero values are valid defaults:
// a non-game, visible, open room with no occupancy limit and no initial
// variables.
type RoomSettings struct {
	Name                string
	IsGame              bool
	IsHidden            bool
	IsPasswordProtected bool
	UserLimit           int16
	SpectatorLimit      int16
	Variables           []*RoomVariable
}

// AddRoom creates a room in the group. It fails with ErrDuplicateName if a
// room with that name already exists in the group. The room ID comes from
// the registry-wide allocator; ID allocation, insertion into the group, and
// registration in the zone's flat index form one critical section, so a
// half-registered room is never observable.
func (g *RoomGroup) AddRoom(settings RoomSettings) (*Room, error) {
	g.mu.Lock()
	if _, exists := g.rooms[settings.Name]; exists {
		g.mu.Unlock()
		return nil, fmt.Errorf("group %q room %q: %w", g.name, settings.Name, ErrDuplicateName)
	}

	room := &Room{
		id:                  g.zone.ids.Next(),
		name:                settings.Name,
		zoneName:            g.zone.name,
		groupName:           g.name,
		isGame:              settings.IsGame,
		isHidden:            settings.IsHidden,
		isPasswordProtected: settings.IsPasswordProtected,
		userLimit:           settings.UserLimit,
		spectatorLimit:      settings.SpectatorLimit,
		variables:           make(map[string]*RoomVariable),
		users:               make(map[string]Player),
		spectators:          make(map[string]Player),
		session:             NewSessionMemory(),
		publisher:           g.zone.publisher,
		resolvers:           g.zone.resolvers,
	}

	for _, v := range settings.Variables {
		if _, exists := room.variables[v.Name()]; exists {
			g.mu.Unlock()
			return nil, fmt.Errorf("group %q room %q variable %q: %w",
				g.name, settings.Name, v.Name(), ErrDuplicateName)
		}
		room.adoptVariableLocked(v)
	}

	g.rooms[settings.Name] = room
	g.roomOrder = append(g.roomOrder, settings.Name)
	g.zone.registerRoom(room)

	ev := Event{
		Type:   EventRoomCreated,
		Zone:   g.zone.name,
		Group:  g.name,
		Room:   room.name,
		RoomID: room.id,
	}
	g.mu.Unlock()

	publish(g.zone.publisher, []Event{ev})
	return room, nil
}

// AddDefaultRoom creates a plain lobby-style room with default settings.
func (g *RoomGroup) AddDefaultRoom(name string) (*Room, error) {
	return g.AddRoom(RoomSettings{Name: name})
}

// RemoveRoom deletes the named room from the group and the zone's flat
// index and tears down its variables. No-op if absent. Occupants are not
// evicted; only the desubscription cascade guarantees eviction.
func (g *RoomGroup) RemoveRoom(name string) {
	g.mu.Lock()
	room, exists := g.rooms[name]
	if !exists {
		g.mu.Unlock()
		return
	}
	delete(g.rooms, name)
	for i, n := range g.roomOrder {
		if n == name {
			g.roomOrder = append(g.roomOrder[:i], g.roomOrder[i+1:]...)
			break
		}
	}
	g.zone.unregisterRoom(room.id)
	ev := Event{
		Type:   EventRoomDeleted,
		Zone:   g.zone.name,
		Group:  g.name,
		Room:   room.name,
		RoomID: room.id,
	}
	g.mu.Unlock()

	room.teardown()
	publish(g.zone.publisher, []Event{ev})
}

// Room returns the named room, or nil if absent.
func (g *RoomGroup) Room(name string) *Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rooms[name]
}

// Rooms returns the group's rooms in creation order.
func (g *RoomGroup) Rooms() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Room, 0, len(g.roomOrder))
	for _, name := range g.roomOrder {
		out = append(out, g.rooms[name])
	}
	return out
}

// RoomNames returns the group's room names in creation order.
func (g *RoomGroup) RoomNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.roomOrder))
	copy(out, g.roomOrder)
	return out
}

// SubscribePlayer adds p to the group's subscriber list. Idempotent: a
// player already subscribed (by save ID) is left alone and no event fires.
func (g *RoomGroup) SubscribePlayer(p Player) {
	g.mu.Lock()
	if g.subscriberIndexLocked(p.SaveID()) >= 0 {
		g.mu.Unlock()
		return
	}
	g.subscribers = append(g.subscribers, p)
	ev := Event{
		Type:   EventPlayerSubscribed,
		Zone:   g.zone.name,
		Group:  g.name,
		Player: p.SaveID(),
	}
	g.mu.Unlock()

	publish(g.zone.publisher, []Event{ev})
}

// DesubscribePlayer removes p from the subscriber list and then evicts the
// player from every room in the group, occupant and spectator seats alike.
// This cascade is the only place a player is guaranteed to be fully removed
// from room occupancy. Idempotent: an unsubscribed player is a no-op.
func (g *RoomGroup) DesubscribePlayer(p Player) {
	g.mu.Lock()
	i := g.subscriberIndexLocked(p.SaveID())
	if i < 0 {
		g.mu.Unlock()
		return
	}
	g.subscribers = append(g.subscribers[:i], g.subscribers[i+1:]...)
	rooms := make([]*Room, 0, len(g.roomOrder))
	for _, name := range g.roomOrder {
		rooms = append(rooms, g.rooms[name])
	}
	ev := Event{
		Type:   EventPlayerDesubscribed,
		Zone:   g.zone.name,
		Group:  g.name,
		Player: p.SaveID(),
	}
	g.mu.Unlock()

	publish(g.zone.publisher, []Event{ev})

	for _, room := range rooms {
		room.evict(p.SaveID())
	}
}

// IsPlayerSubscribed reports whether p is subscribed, matched by save ID.
func (g *RoomGroup) IsPlayerSubscribed(p Player) bool {
	return g.IsSubscriberID(p.SaveID())
}

// IsSubscriberID reports whether the player with the given save ID is
// subscribed.
func (g *RoomGroup) IsSubscriberID(saveID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.subscriberIndexLocked(saveID) >= 0
}

// Subscribers returns the subscriber list in subscription order.
func (g *RoomGroup) Subscribers() []Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Player, len(g.subscribers))
	copy(out, g.subscribers)
	return out
}

// SubscriberCount returns the number of subscribed players.
func (g *RoomGroup) SubscriberCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.subscribers)
}

func (g *RoomGroup) subscriberIndexLocked(saveID string) int {
	for i, p := range g.subscribers {
		if p.SaveID() == saveID {
			return i
		}
	}
	return -1
}
