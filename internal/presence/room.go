package presence

import (
	"fmt"
	"math"
	"sync"

	"github.com/pixil98/go-presence/internal/wire"
)

// Room is a joinable unit with occupancy limits, flags, and synchronized
// variables. Rooms are created through their owning group's factory and
// carry a process-wide-unique numeric ID.
type Room struct {
	id        int32
	name      string
	zoneName  string
	groupName string

	isGame              bool
	isHidden            bool
	isPasswordProtected bool
	userLimit           int16
	spectatorLimit      int16

	mu         sync.RWMutex
	varOrder   []string
	variables  map[string]*RoomVariable
	users      map[string]Player
	spectators map[string]Player

	session   *SessionMemory
	publisher Publisher
	resolvers *ResolverRegistry
}

// ID returns the room's process-wide-unique numeric ID.
func (r *Room) ID() int32 { return r.id }

// Name returns the room name, unique within its owning group.
func (r *Room) Name() string { return r.name }

// GroupName returns the name of the owning group. Navigation only; resolve
// through the zone for the live group.
func (r *Room) GroupName() string { return r.groupName }

// ZoneName returns the name of the owning zone.
func (r *Room) ZoneName() string { return r.zoneName }

// IsGame reports whether the room is a game room. Spectator fields are only
// meaningful, and only serialized, for game rooms.
func (r *Room) IsGame() bool { return r.isGame }

// IsHidden reports whether the room is hidden from listings.
func (r *Room) IsHidden() bool { return r.isHidden }

// IsPasswordProtected reports whether a password is required to join.
func (r *Room) IsPasswordProtected() bool { return r.isPasswordProtected }

// UserLimit returns the maximum occupant count.
func (r *Room) UserLimit() int16 { return r.userLimit }

// SpectatorLimit returns the maximum spectator count.
func (r *Room) SpectatorLimit() int16 { return r.spectatorLimit }

// Session returns the room's ephemeral scratch storage.
func (r *Room) Session() *SessionMemory { return r.session }

// AddVariable attaches v to the room. Fails with ErrDuplicateName if a
// variable with the same name already exists.
func (r *Room) AddVariable(v *RoomVariable) error {
	r.mu.Lock()
	if _, exists := r.variables[v.Name()]; exists {
		r.mu.Unlock()
		return fmt.Errorf("room %q variable %q: %w", r.name, v.Name(), ErrDuplicateName)
	}
	r.adoptVariableLocked(v)
	ev := Event{
		Type:     EventRoomVarAdded,
		Zone:     r.zoneName,
		Group:    r.groupName,
		Room:     r.name,
		RoomID:   r.id,
		Variable: v.Name(),
		Value:    wire.Native(v.Value()),
	}
	pub := r.publisher
	r.mu.Unlock()

	publish(pub, []Event{ev})
	return nil
}

// adoptVariableLocked registers v in the room's variable map and tags it
// with the owning room. Caller holds r.mu.
func (r *Room) adoptVariableLocked(v *RoomVariable) {
	v.bind(r.zoneName, r.groupName, r.name, r.id, r.publisher)
	r.variables[v.Name()] = v
	r.varOrder = append(r.varOrder, v.Name())
}

// RemoveVariable detaches the named variable. No-op if absent.
func (r *Room) RemoveVariable(name string) {
	r.mu.Lock()
	if _, exists := r.variables[name]; !exists {
		r.mu.Unlock()
		return
	}
	delete(r.variables, name)
	for i, n := range r.varOrder {
		if n == name {
			r.varOrder = append(r.varOrder[:i], r.varOrder[i+1:]...)
			break
		}
	}
	ev := Event{
		Type:     EventRoomVarRemoved,
		Zone:     r.zoneName,
		Group:    r.groupName,
		Room:     r.name,
		RoomID:   r.id,
		Variable: name,
	}
	pub := r.publisher
	r.mu.Unlock()

	publish(pub, []Event{ev})
}

// Variable returns the named variable, or nil if absent.
func (r *Room) Variable(name string) *RoomVariable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.variables[name]
}

// Variables returns the room's variables in attachment order.
func (r *Room) Variables() []*RoomVariable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.variablesLocked()
}

func (r *Room) variablesLocked() []*RoomVariable {
	out := make([]*RoomVariable, 0, len(r.varOrder))
	for _, name := range r.varOrder {
		out = append(out, r.variables[name])
	}
	return out
}

// AddUser places p in the room's occupant list. No-op if already present.
func (r *Room) AddUser(p Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[p.SaveID()] = p
}

// RemoveUser removes p from the occupant list. No-op if absent.
func (r *Room) RemoveUser(p Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, p.SaveID())
}

// AddSpectator places p in the room's spectator list. Only meaningful for
// game rooms, but not enforced here.
func (r *Room) AddSpectator(p Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spectators[p.SaveID()] = p
}

// RemoveSpectator removes p from the spectator list. No-op if absent.
func (r *Room) RemoveSpectator(p Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.spectators, p.SaveID())
}

// evict removes the player with the given save ID from both the occupant
// and spectator lists. Used by the group's desubscription cascade.
func (r *Room) evict(saveID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, saveID)
	delete(r.spectators, saveID)
}

// ContainsUser reports whether the player with the given save ID occupies
// the room (as a regular user).
func (r *Room) ContainsUser(saveID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[saveID]
	return ok
}

// ContainsSpectator reports whether the player with the given save ID is
// spectating the room.
func (r *Room) ContainsSpectator(saveID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.spectators[saveID]
	return ok
}

// UserCount returns the current occupant count.
func (r *Room) UserCount() int16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int16(len(r.users))
}

// SpectatorCount returns the current spectator count.
func (r *Room) SpectatorCount() int16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int16(len(r.spectators))
}

// teardown clears the room's variables and occupancy without dispatching
// per-variable events; the owning group publishes a single room-deleted
// event instead.
func (r *Room) teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables = make(map[string]*RoomVariable)
	r.varOrder = nil
	r.users = make(map[string]Player)
	r.spectators = make(map[string]Player)
}

// Encode serializes the room for transmission. Field order is fixed by the
// client protocol: id, name, group name, isGame, isHidden,
// isPasswordProtected, user count, user limit, variable list, and (only
// for game rooms) spectator count and spectator limit. Private variables
// are skipped unless includePrivate is set. Dynamic variables are resolved
// immediately before encoding.
func (r *Room) Encode(w *wire.Writer, includePrivate bool) error {
	// Snapshot under the read lock, then resolve and encode without it so
	// resolvers are free to inspect the room.
	r.mu.RLock()
	vars := r.variablesLocked()
	userCount := int16(len(r.users))
	spectatorCount := int16(len(r.spectators))
	r.mu.RUnlock()

	visible := make([]*RoomVariable, 0, len(vars))
	for _, v := range vars {
		if v.IsPrivate() && !includePrivate {
			continue
		}
		v.populate(r.resolvers, r)
		visible = append(visible, v)
	}

	w.WriteInt(r.id)
	w.WriteString(r.name)
	w.WriteString(r.groupName)
	w.WriteBool(r.isGame)
	w.WriteBool(r.isHidden)
	w.WriteBool(r.isPasswordProtected)
	w.WriteShort(userCount)
	w.WriteShort(r.userLimit)

	if len(visible) > math.MaxInt16 {
		return fmt.Errorf("room %q: %w: %d variables", r.name, wire.ErrTooManyElements, len(visible))
	}
	w.WriteShort(int16(len(visible)))
	for _, v := range visible {
		if err := v.Encode(w); err != nil {
			return fmt.Errorf("room %q: %w", r.name, err)
		}
	}

	if r.isGame {
		w.WriteShort(spectatorCount)
		w.WriteShort(r.spectatorLimit)
	}

	if err := w.Err(); err != nil {
		return fmt.Errorf("room %q: %w", r.name, err)
	}
	return nil
}

// RoomInfo is the decoded form of a room frame: a point-in-time snapshot,
// not a live room.
type RoomInfo struct {
	ID                  int32
	Name                string
	GroupName           string
	IsGame              bool
	IsHidden            bool
	IsPasswordProtected bool
	UserCount           int16
	UserLimit           int16
	Variables           []*RoomVariable
	SpectatorCount      int16
	SpectatorLimit      int16
}

// DecodeRoomInfo reads one room frame written by Room.Encode.
func DecodeRoomInfo(r *wire.Reader) (*RoomInfo, error) {
	info := &RoomInfo{}

	var err error
	if info.ID, err = r.ReadInt(); err != nil {
		return nil, fmt.Errorf("room id: %w", err)
	}
	if info.Name, err = r.ReadString(); err != nil {
		return nil, fmt.Errorf("room name: %w", err)
	}
	if info.GroupName, err = r.ReadString(); err != nil {
		return nil, fmt.Errorf("room %q group: %w", info.Name, err)
	}
	if info.IsGame, err = r.ReadBool(); err != nil {
		return nil, fmt.Errorf("room %q flags: %w", info.Name, err)
	}
	if info.IsHidden, err = r.ReadBool(); err != nil {
		return nil, fmt.Errorf("room %q flags: %w", info.Name, err)
	}
	if info.IsPasswordProtected, err = r.ReadBool(); err != nil {
		return nil, fmt.Errorf("room %q flags: %w", info.Name, err)
	}
	if info.UserCount, err = r.ReadShort(); err != nil {
		return nil, fmt.Errorf("room %q user count: %w", info.Name, err)
	}
	if info.UserLimit, err = r.ReadShort(); err != nil {
		return nil, fmt.Errorf("room %q user limit: %w", info.Name, err)
	}

	count, err := r.ReadShort()
	if err != nil {
		return nil, fmt.Errorf("room %q variable count: %w", info.Name, err)
	}
	for i := 0; i < int(count); i++ {
		v, err := DecodeRoomVariable(r)
		if err != nil {
			return nil, fmt.Errorf("room %q: %w", info.Name, err)
		}
		info.Variables = append(info.Variables, v)
	}

	if info.IsGame {
		if info.SpectatorCount, err = r.ReadShort(); err != nil {
			return nil, fmt.Errorf("room %q spectator count: %w", info.Name, err)
		}
		if info.SpectatorLimit, err = r.ReadShort(); err != nil {
			return nil, fmt.Errorf("room %q spectator limit: %w", info.Name, err)
		}
	}

	return info, nil
}
