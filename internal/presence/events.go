package presence

// EventType identifies a lifecycle event published by the presence core.
type EventType string

const (
	EventGroupCreated       EventType = "group.created"
	EventGroupDeleted       EventType = "group.deleted"
	EventRoomCreated        EventType = "room.created"
	EventRoomDeleted        EventType = "room.deleted"
	EventRoomVarAdded       EventType = "roomvar.added"
	EventRoomVarRemoved     EventType = "roomvar.removed"
	EventRoomVarChanged     EventType = "roomvar.changed"
	EventUserVarAdded       EventType = "uservar.added"
	EventUserVarRemoved     EventType = "uservar.removed"
	EventUserVarChanged     EventType = "uservar.changed"
	EventPlayerSubscribed   EventType = "player.subscribed"
	EventPlayerDesubscribed EventType = "player.desubscribed"
)

// Event is the value published for every lifecycle change. Fields that do
// not apply to the event type are left zero.
type Event struct {
	Type     EventType `json:"type"`
	Zone     string    `json:"zone,omitempty"`
	Group    string    `json:"group,omitempty"`
	Room     string    `json:"room,omitempty"`
	RoomID   int32     `json:"room_id,omitempty"`
	Variable string    `json:"variable,omitempty"`
	Player   string    `json:"player,omitempty"`
	User     string    `json:"user,omitempty"`
	Value    any       `json:"value,omitempty"`
}

// Publisher receives lifecycle events. Implementations must tolerate being
// called from any goroutine; the core always publishes outside its own
// container locks, so handlers are free to call back into the registry.
type Publisher interface {
	Publish(Event)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// publish sends each captured event to p in order, tolerating a nil
// publisher. Mutating operations capture their events while holding the
// container lock and call publish after releasing it.
func publish(p Publisher, events []Event) {
	if p == nil {
		return
	}
	for _, ev := range events {
		p.Publish(ev)
	}
}
