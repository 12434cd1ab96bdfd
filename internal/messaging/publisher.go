package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-presence/internal/presence"
)

// EventPublisher forwards presence lifecycle events onto the NATS bus.
// Events are serialized as JSON and published to one subject per event
// type, namespaced by zone: "presence.<zone>.<type>". Events without a zone
// (user-variable events) go to "presence.user.<type>".
//
// Publish is called by the presence core outside its container locks, so a
// slow bus never extends a registry critical section.
type EventPublisher struct {
	bus *NatsServer
}

// NewEventPublisher wraps the bus for presence event delivery.
func NewEventPublisher(bus *NatsServer) *EventPublisher {
	return &EventPublisher{bus: bus}
}

// Publish satisfies presence.Publisher. Delivery failures are logged, not
// returned: a lifecycle mutation has already happened by the time its event
// is published, so the caller has nothing to roll back.
func (p *EventPublisher) Publish(ev presence.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshalling presence event", "type", ev.Type, "error", err)
		return
	}

	if err := p.bus.Publish(subjectFor(ev), data); err != nil {
		slog.Warn("publishing presence event", "type", ev.Type, "error", err)
	}
}

func subjectFor(ev presence.Event) string {
	scope := ev.Zone
	if scope == "" {
		scope = "user"
	}
	return fmt.Sprintf("presence.%s.%s", scope, ev.Type)
}
