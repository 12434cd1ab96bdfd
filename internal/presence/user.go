package presence

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/pixil98/go-presence/internal/wire"
)

// NoRoom is the room ID a user holds while not in any room.
const NoRoom int32 = -1

// User is the session/presence record for one connected player. It carries
// a numeric session ID, the stable save ID used for all identity
// comparisons, the user's typed variables, and ephemeral session memory.
type User struct {
	id        int32
	sessionID string
	saveID    string
	name      string

	mu          sync.RWMutex
	privilege   int
	playerIndex int
	roomID      int32
	varOrder    []string
	variables   map[string]*UserVariable

	session   *SessionMemory
	publisher Publisher
}

// ID returns the numeric session ID.
func (u *User) ID() int32 { return u.id }

// SessionID returns the unique session identifier.
func (u *User) SessionID() string { return u.sessionID }

// SaveID returns the stable save identifier. Satisfies Player.
func (u *User) SaveID() string { return u.saveID }

// Username returns the display name. Satisfies Player.
func (u *User) Username() string { return u.name }

// Session returns the user's ephemeral scratch storage.
func (u *User) Session() *SessionMemory { return u.session }

// Privilege returns the user's privilege level.
func (u *User) Privilege() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.privilege
}

// SetPrivilege updates the user's privilege level.
func (u *User) SetPrivilege(p int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.privilege = p
}

// PlayerIndex returns the user's seat index within their current game room.
func (u *User) PlayerIndex() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.playerIndex
}

// SetPlayerIndex updates the seat index.
func (u *User) SetPlayerIndex(i int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.playerIndex = i
}

// RoomID returns the ID of the room the user currently occupies, or NoRoom.
func (u *User) RoomID() int32 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.roomID
}

// SetRoomID records the user's current room. Pass NoRoom on leave.
func (u *User) SetRoomID(id int32) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.roomID = id
}

// AddVariable attaches v to the user. Fails with ErrDuplicateName if a
// variable with the same name already exists.
func (u *User) AddVariable(v *UserVariable) error {
	u.mu.Lock()
	if _, exists := u.variables[v.Name()]; exists {
		u.mu.Unlock()
		return fmt.Errorf("user %q variable %q: %w", u.name, v.Name(), ErrDuplicateName)
	}
	v.bind(u.name, u.saveID, u.publisher)
	u.variables[v.Name()] = v
	u.varOrder = append(u.varOrder, v.Name())
	ev := Event{
		Type:     EventUserVarAdded,
		User:     u.name,
		Player:   u.saveID,
		Variable: v.Name(),
		Value:    wire.Native(v.Value()),
	}
	u.mu.Unlock()

	publish(u.publisher, []Event{ev})
	return nil
}

// RemoveVariable detaches the named variable. No-op if absent.
func (u *User) RemoveVariable(name string) {
	u.mu.Lock()
	if _, exists := u.variables[name]; !exists {
		u.mu.Unlock()
		return
	}
	delete(u.variables, name)
	for i, n := range u.varOrder {
		if n == name {
			u.varOrder = append(u.varOrder[:i], u.varOrder[i+1:]...)
			break
		}
	}
	ev := Event{
		Type:     EventUserVarRemoved,
		User:     u.name,
		Player:   u.saveID,
		Variable: name,
	}
	u.mu.Unlock()

	publish(u.publisher, []Event{ev})
}

// Variable returns the named variable, or nil if absent.
func (u *User) Variable(name string) *UserVariable {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.variables[name]
}

// Variables returns the user's variables in attachment order.
func (u *User) Variables() []*UserVariable {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*UserVariable, 0, len(u.varOrder))
	for _, name := range u.varOrder {
		out = append(out, u.variables[name])
	}
	return out
}

// EncodeVariables writes the user's variables to w: a 16-bit count followed
// by each variable.
func (u *User) EncodeVariables(w *wire.Writer) error {
	vars := u.Variables()
	if len(vars) > math.MaxInt16 {
		return fmt.Errorf("user %q: %w: %d variables", u.name, wire.ErrTooManyElements, len(vars))
	}
	w.WriteShort(int16(len(vars)))
	for _, v := range vars {
		if err := v.Encode(w); err != nil {
			return fmt.Errorf("user %q: %w", u.name, err)
		}
	}
	return w.Err()
}

// UserManager creates and indexes user sessions. Numeric session IDs come
// from a manager-local atomic counter; session IDs are UUIDs.
type UserManager struct {
	mu     sync.RWMutex
	bySave map[string]*User
	byNum  map[int32]*User
	lastID atomic.Int32
	pub    Publisher
}

// NewUserManager returns an empty manager publishing user-variable events
// to pub.
func NewUserManager(pub Publisher) *UserManager {
	return &UserManager{
		bySave: make(map[string]*User),
		byNum:  make(map[int32]*User),
		pub:    pub,
	}
}

// Login creates a session for the given save ID and username. Fails with
// ErrDuplicateName if a session for that save ID already exists.
func (m *UserManager) Login(saveID, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySave[saveID]; exists {
		return nil, fmt.Errorf("user session %q: %w", saveID, ErrDuplicateName)
	}

	u := &User{
		id:        m.lastID.Add(1),
		sessionID: uuid.New().String(),
		saveID:    saveID,
		name:      username,
		roomID:    NoRoom,
		variables: make(map[string]*UserVariable),
		session:   NewSessionMemory(),
		publisher: m.pub,
	}
	m.bySave[saveID] = u
	m.byNum[u.id] = u
	return u, nil
}

// Logout drops the session for the given save ID. No-op if absent.
func (m *UserManager) Logout(saveID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, exists := m.bySave[saveID]
	if !exists {
		return
	}
	delete(m.bySave, saveID)
	delete(m.byNum, u.id)
}

// BySaveID returns the session for the given save ID, or nil.
func (m *UserManager) BySaveID(saveID string) *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bySave[saveID]
}

// ByID returns the session with the given numeric ID, or nil.
func (m *UserManager) ByID(id int32) *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byNum[id]
}

// Count returns the number of active sessions.
func (m *UserManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bySave)
}
