package presence

import "sync/atomic"

// RoomIDAllocator hands out process-wide-unique room IDs. One allocator is
// shared by every zone in a registry so IDs never collide across zones.
// IDs start at 1 and are never reused.
type RoomIDAllocator struct {
	last atomic.Int32
}

// NewRoomIDAllocator returns an allocator whose first ID is 1.
func NewRoomIDAllocator() *RoomIDAllocator {
	return &RoomIDAllocator{}
}

// Next returns the next unused room ID.
func (a *RoomIDAllocator) Next() int32 {
	return a.last.Add(1)
}

// Last returns the most recently allocated ID, or 0 if none.
func (a *RoomIDAllocator) Last() int32 {
	return a.last.Load()
}
