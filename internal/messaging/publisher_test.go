package messaging

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-presence/internal/presence"
)

func TestSubjectFor(t *testing.T) {
	tests := map[string]struct {
		ev  presence.Event
		exp string
	}{
		"zone scoped": {
			ev:  presence.Event{Type: presence.EventRoomCreated, Zone: "main"},
			exp: "presence.main.room.created",
		},
		"user scoped": {
			ev:  presence.Event{Type: presence.EventUserVarChanged, User: "ann"},
			exp: "presence.user.uservar.changed",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "subject", subjectFor(tt.ev), tt.exp)
		})
	}
}
