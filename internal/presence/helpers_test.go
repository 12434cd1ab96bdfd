package presence

import "sync"

// fakePlayer implements Player for tests. Two fakePlayers with the same
// save ID must be treated as the same subscriber.
type fakePlayer struct {
	saveID   string
	username string
}

func (p *fakePlayer) SaveID() string   { return p.saveID }
func (p *fakePlayer) Username() string { return p.username }

// recordingPublisher captures published events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) all() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPublisher) byType(t EventType) []Event {
	var out []Event
	for _, ev := range p.all() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// newTestRegistry returns a registry wired to a recording publisher.
func newTestRegistry() (*Registry, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewRegistry(WithPublisher(pub)), pub
}
