package presence

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestZone_AddRoomGroupDuplicate(t *testing.T) {
	reg, pub := newTestRegistry()
	zone, _ := reg.CreateZone("z")

	_, err := zone.AddRoomGroup("default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "created events", len(pub.byType(EventGroupCreated)), 1)

	_, err = zone.AddRoomGroup("default")
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("error = %v, expected ErrDuplicateName", err)
	}
	testutil.AssertEqual(t, "groups", len(zone.RoomGroupNames()), 1)
}

func TestZone_RemoveRoomGroupCascade(t *testing.T) {
	reg, pub := newTestRegistry()
	zone, _ := reg.CreateZone("z")
	group, _ := zone.AddRoomGroup("g")

	r1, _ := group.AddDefaultRoom("one")
	r2, _ := group.AddDefaultRoom("two")
	p := &fakePlayer{saveID: "save-1", username: "ann"}
	group.SubscribePlayer(p)
	r1.AddUser(p)
	r2.AddUser(p)
	pub.reset()

	zone.RemoveRoomGroup("g")

	if zone.RoomGroup("g") != nil {
		t.Error("group still present in zone")
	}
	testutil.AssertEqual(t, "flat index size", zone.RoomCount(), 0)
	if zone.RoomByID(r1.ID()) != nil || zone.RoomByID(r2.ID()) != nil {
		t.Error("rooms still present in flat index")
	}
	testutil.AssertEqual(t, "subscriber count", group.SubscriberCount(), 0)
	testutil.AssertEqual(t, "r1 occupancy", r1.ContainsUser("save-1"), false)
	testutil.AssertEqual(t, "r2 occupancy", r2.ContainsUser("save-1"), false)

	events := pub.all()
	testutil.AssertEqual(t, "desubscribed", len(pub.byType(EventPlayerDesubscribed)), 1)
	testutil.AssertEqual(t, "rooms deleted", len(pub.byType(EventRoomDeleted)), 2)
	testutil.AssertEqual(t, "group deleted", len(pub.byType(EventGroupDeleted)), 1)
	// The group-deleted event comes last.
	testutil.AssertEqual(t, "last event", string(events[len(events)-1].Type), string(EventGroupDeleted))

	// Removing an absent group is a silent no-op.
	pub.reset()
	zone.RemoveRoomGroup("g")
	testutil.AssertEqual(t, "events after no-op", len(pub.all()), 0)
}

func TestZone_FlatIndexMatchesGroups(t *testing.T) {
	reg, _ := newTestRegistry()
	zone, _ := reg.CreateZone("z")

	g1, _ := zone.AddRoomGroup("g1")
	g2, _ := zone.AddRoomGroup("g2")
	_, _ = g1.AddDefaultRoom("a")
	_, _ = g1.AddDefaultRoom("b")
	_, _ = g2.AddDefaultRoom("c")

	// Every room in any group appears exactly once in the flat index.
	seen := map[int32]bool{}
	for _, gname := range zone.RoomGroupNames() {
		for _, room := range zone.RoomGroup(gname).Rooms() {
			if seen[room.ID()] {
				t.Errorf("room %d indexed twice", room.ID())
			}
			seen[room.ID()] = true
			if zone.RoomByID(room.ID()) != room {
				t.Errorf("room %d missing from flat index", room.ID())
			}
		}
	}
	testutil.AssertEqual(t, "index size", zone.RoomCount(), len(seen))
}

func TestZone_ActiveFlag(t *testing.T) {
	reg, _ := newTestRegistry()
	zone, _ := reg.CreateZone("z")

	testutil.AssertEqual(t, "initial", zone.IsActive(), false)
	zone.Activate()
	testutil.AssertEqual(t, "after activate", zone.IsActive(), true)
	zone.Deactivate()
	testutil.AssertEqual(t, "after deactivate", zone.IsActive(), false)
}
