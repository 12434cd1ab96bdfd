package presence

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixil98/go-presence/internal/wire"
)

// RoomVariable is a named, typed, mutable value attached to a room and
// synchronized to subscribed clients. A private variable is excluded from
// client views unless explicitly requested; the persistent flag is advisory
// only and has no storage side effect in this layer.
//
// A dynamic variable stores no value of its own: each time the room is
// encoded, a resolver registered under the variable's resolution key is
// invoked to compute the current value.
type RoomVariable struct {
	mu sync.RWMutex

	name       string
	value      wire.Value
	private    bool
	persistent bool

	dynamic       bool
	resolutionKey string

	// Owner tags, set when the variable is adopted by a room. Used for
	// event payloads and resolver calls only.
	zoneName  string
	groupName string
	roomName  string
	roomID    int32

	publisher Publisher
}

// RoomVariableOpt configures a room variable at construction.
type RoomVariableOpt func(*RoomVariable)

// WithPrivate marks the variable private.
func WithPrivate() RoomVariableOpt {
	return func(v *RoomVariable) { v.private = true }
}

// WithPersistent sets the advisory persistent flag.
func WithPersistent() RoomVariableOpt {
	return func(v *RoomVariable) { v.persistent = true }
}

// NewRoomVariable creates a variable holding value. The value's wire kind is
// inferred; a runtime type matching none of the wire tags is an error.
func NewRoomVariable(name string, value any, opts ...RoomVariableOpt) (*RoomVariable, error) {
	wv, err := wire.ValueOf(value)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}

	v := &RoomVariable{name: name, value: wv}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// NewDynamicRoomVariable creates a variable resolved on demand via key.
// Until the first successful resolution it encodes as null.
func NewDynamicRoomVariable(name, key string, opts ...RoomVariableOpt) *RoomVariable {
	v := &RoomVariable{
		name:          name,
		value:         wire.Null{},
		dynamic:       true,
		resolutionKey: key,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Name returns the variable name, unique within its owning room.
func (v *RoomVariable) Name() string { return v.name }

// IsPrivate reports whether the variable is excluded from client views by
// default.
func (v *RoomVariable) IsPrivate() bool { return v.private }

// IsPersistent reports the advisory persistent flag.
func (v *RoomVariable) IsPersistent() bool { return v.persistent }

// IsDynamic reports whether the variable is resolver-backed.
func (v *RoomVariable) IsDynamic() bool { return v.dynamic }

// ResolutionKey returns the dynamic resolution key, or "" for plain
// variables.
func (v *RoomVariable) ResolutionKey() string { return v.resolutionKey }

// Value returns the current wire value.
func (v *RoomVariable) Value() wire.Value {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Type returns the wire kind of the current value.
func (v *RoomVariable) Type() wire.VarType {
	return v.Value().Type()
}

// SetValue replaces the variable's value and dispatches a value-changed
// event. Any representable value is accepted; no schema is enforced.
func (v *RoomVariable) SetValue(value any) error {
	wv, err := wire.ValueOf(value)
	if err != nil {
		return fmt.Errorf("variable %q: %w", v.name, err)
	}

	v.mu.Lock()
	v.value = wv
	ev := v.changedEventLocked()
	pub := v.publisher
	v.mu.Unlock()

	publish(pub, []Event{ev})
	return nil
}

// bind tags the variable with its owning room and event publisher. Called
// by the room while adopting the variable.
func (v *RoomVariable) bind(zone, group, room string, roomID int32, pub Publisher) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoneName = zone
	v.groupName = group
	v.roomName = room
	v.roomID = roomID
	v.publisher = pub
}

func (v *RoomVariable) changedEventLocked() Event {
	return Event{
		Type:     EventRoomVarChanged,
		Zone:     v.zoneName,
		Group:    v.groupName,
		Room:     v.roomName,
		RoomID:   v.roomID,
		Variable: v.name,
		Value:    wire.Native(v.value),
	}
}

// populate refreshes a dynamic variable's value by invoking its resolver.
// A missing resolver or a resolver failure leaves the last-held value in
// place; the variable then encodes whatever it last held. populate does not
// dispatch a value-changed event: the value is computed for the encode in
// progress, not pushed as a state change.
func (v *RoomVariable) populate(resolvers *ResolverRegistry, room *Room) {
	if !v.dynamic {
		return
	}

	resolver, ok := resolvers.Lookup(v.resolutionKey)
	if !ok {
		slog.Warn("no resolver for dynamic room variable",
			"room", v.roomName, "variable", v.name, "key", v.resolutionKey)
		return
	}

	val, err := resolver(v.zoneName, v.groupName, room, v.resolutionKey)
	if err != nil {
		slog.Warn("dynamic room variable resolution failed",
			"room", v.roomName, "variable", v.name, "key", v.resolutionKey, "error", err)
		return
	}
	if val == nil {
		val = wire.Null{}
	}

	v.mu.Lock()
	v.value = val
	v.mu.Unlock()
}

// Encode writes the variable to w: name, type tag, payload, private flag,
// persistent flag.
func (v *RoomVariable) Encode(w *wire.Writer) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	w.WriteString(v.name)
	if err := w.WriteValue(v.value); err != nil {
		return fmt.Errorf("variable %q: %w", v.name, err)
	}
	w.WriteBool(v.private)
	w.WriteBool(v.persistent)
	return w.Err()
}

// DecodeRoomVariable reads one room variable written by Encode.
func DecodeRoomVariable(r *wire.Reader) (*RoomVariable, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("variable name: %w", err)
	}
	val, err := r.ReadValue()
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	private, err := r.ReadBool()
	if err != nil {
		return nil, fmt.Errorf("variable %q private flag: %w", name, err)
	}
	persistent, err := r.ReadBool()
	if err != nil {
		return nil, fmt.Errorf("variable %q persistent flag: %w", name, err)
	}

	return &RoomVariable{
		name:       name,
		value:      val,
		private:    private,
		persistent: persistent,
	}, nil
}

// UserVariable is a named, typed, mutable value attached to a user. Unlike
// room variables it carries no private/persistent flags and cannot be
// dynamic.
type UserVariable struct {
	mu sync.RWMutex

	name  string
	value wire.Value

	userName  string
	saveID    string
	publisher Publisher
}

// NewUserVariable creates a user variable holding value.
func NewUserVariable(name string, value any) (*UserVariable, error) {
	wv, err := wire.ValueOf(value)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	return &UserVariable{name: name, value: wv}, nil
}

// Name returns the variable name, unique within its owning user.
func (v *UserVariable) Name() string { return v.name }

// Value returns the current wire value.
func (v *UserVariable) Value() wire.Value {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Type returns the wire kind of the current value.
func (v *UserVariable) Type() wire.VarType {
	return v.Value().Type()
}

// SetValue replaces the variable's value and dispatches a value-changed
// event.
func (v *UserVariable) SetValue(value any) error {
	wv, err := wire.ValueOf(value)
	if err != nil {
		return fmt.Errorf("variable %q: %w", v.name, err)
	}

	v.mu.Lock()
	v.value = wv
	ev := Event{
		Type:     EventUserVarChanged,
		User:     v.userName,
		Player:   v.saveID,
		Variable: v.name,
		Value:    wire.Native(wv),
	}
	pub := v.publisher
	v.mu.Unlock()

	publish(pub, []Event{ev})
	return nil
}

func (v *UserVariable) bind(user, saveID string, pub Publisher) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.userName = user
	v.saveID = saveID
	v.publisher = pub
}

// Encode writes the variable to w: name, type tag, payload.
func (v *UserVariable) Encode(w *wire.Writer) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	w.WriteString(v.name)
	if err := w.WriteValue(v.value); err != nil {
		return fmt.Errorf("variable %q: %w", v.name, err)
	}
	return w.Err()
}

// DecodeUserVariable reads one user variable written by Encode.
func DecodeUserVariable(r *wire.Reader) (*UserVariable, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("variable name: %w", err)
	}
	val, err := r.ReadValue()
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	return &UserVariable{name: name, value: val}, nil
}
