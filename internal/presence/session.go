package presence

import "sync"

// SessionMemory is ephemeral scratch storage attached to a room or user,
// keyed by a logical type key (e.g. "minigame.controller"). It is never
// serialized to the wire and never persisted.
type SessionMemory struct {
	mu      sync.RWMutex
	objects map[string]any
}

// NewSessionMemory returns empty session storage.
func NewSessionMemory() *SessionMemory {
	return &SessionMemory{objects: make(map[string]any)}
}

// Set stores v under key, replacing any previous value.
func (m *SessionMemory) Set(key string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = v
}

// Get returns the value stored under key. Returns (nil, false) if absent.
func (m *SessionMemory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.objects[key]
	return v, ok
}

// Delete removes the value stored under key, if present.
func (m *SessionMemory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}

// Len returns the number of stored objects.
func (m *SessionMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// SessionObject returns the value stored under key if it is a T.
// Returns the zero value and false if the key is absent or holds a
// different type.
func SessionObject[T any](m *SessionMemory, key string) (T, bool) {
	var zero T
	v, ok := m.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
