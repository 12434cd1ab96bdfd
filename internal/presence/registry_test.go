package presence

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestRegistry_CreateZoneDuplicate(t *testing.T) {
	reg, _ := newTestRegistry()

	_, err := reg.CreateZone("main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = reg.CreateZone("main")
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("error = %v, expected ErrDuplicateName", err)
	}

	// Zone names are case-sensitive.
	if _, err := reg.CreateZone("Main"); err != nil {
		t.Errorf("case-distinct name rejected: %v", err)
	}
}

func TestRegistry_RoomIDsUniqueAcrossZones(t *testing.T) {
	reg, _ := newTestRegistry()

	seen := map[int32]string{}
	for zi := 0; zi < 3; zi++ {
		zone, _ := reg.CreateZone(fmt.Sprintf("zone-%d", zi))
		group, _ := zone.AddRoomGroup("g")
		for ri := 0; ri < 5; ri++ {
			room, err := group.AddDefaultRoom(fmt.Sprintf("room-%d", ri))
			if err != nil {
				t.Fatalf("creating room: %v", err)
			}
			if prev, dup := seen[room.ID()]; dup {
				t.Errorf("room ID %d reused (first in %s)", room.ID(), prev)
			}
			seen[room.ID()] = zone.Name()
		}
	}
	testutil.AssertEqual(t, "rooms created", len(seen), 15)
}

func TestRegistry_RoomIDsUniqueUnderConcurrency(t *testing.T) {
	reg, _ := newTestRegistry()

	const workers = 8
	const perWorker = 50

	zones := make([]*Zone, workers)
	groups := make([]*RoomGroup, workers)
	for i := range zones {
		z, _ := reg.CreateZone(fmt.Sprintf("z%d", i))
		g, _ := z.AddRoomGroup("g")
		zones[i], groups[i] = z, g
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := groups[i].AddDefaultRoom(fmt.Sprintf("room-%d", j))
				if err != nil {
					t.Errorf("worker %d: %v", i, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	seen := map[int32]bool{}
	total := 0
	for _, z := range zones {
		for _, room := range z.Rooms() {
			if seen[room.ID()] {
				t.Errorf("room ID %d allocated twice", room.ID())
			}
			seen[room.ID()] = true
			total++
		}
	}
	testutil.AssertEqual(t, "total rooms", total, workers*perWorker)
}

func TestRegistry_RemoveZone(t *testing.T) {
	reg, pub := newTestRegistry()
	zone, _ := reg.CreateZone("z")
	group, _ := zone.AddRoomGroup("g")
	_, _ = group.AddDefaultRoom("r")
	p := &fakePlayer{saveID: "s", username: "ann"}
	group.SubscribePlayer(p)
	pub.reset()

	reg.RemoveZone("z")

	if reg.Zone("z") != nil {
		t.Error("zone still present")
	}
	testutil.AssertEqual(t, "desubscribed", len(pub.byType(EventPlayerDesubscribed)), 1)
	testutil.AssertEqual(t, "group deleted", len(pub.byType(EventGroupDeleted)), 1)

	// Removing an absent zone is a no-op.
	reg.RemoveZone("z")
}

func TestRegistry_ZoneNamesSorted(t *testing.T) {
	reg, _ := newTestRegistry()
	for _, name := range []string{"gamma", "alpha", "beta"} {
		if _, err := reg.CreateZone(name); err != nil {
			t.Fatalf("creating zone %q: %v", name, err)
		}
	}

	names := reg.ZoneNames()
	exp := []string{"alpha", "beta", "gamma"}
	for i, n := range exp {
		if names[i] != n {
			t.Errorf("names[%d] = %q, expected %q", i, names[i], n)
		}
	}
}

func TestUserManager_Sessions(t *testing.T) {
	reg, _ := newTestRegistry()
	um := reg.Users()

	u1, err := um.Login("save-1", "ann")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u1.SessionID() == "" {
		t.Error("empty session id")
	}
	testutil.AssertEqual(t, "room id", u1.RoomID(), NoRoom)

	// A second login for the same save fails.
	_, err = um.Login("save-1", "ann")
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("error = %v, expected ErrDuplicateName", err)
	}

	u2, _ := um.Login("save-2", "bob")
	if u2.ID() == u1.ID() {
		t.Error("numeric session IDs collide")
	}

	if um.BySaveID("save-1") != u1 || um.ByID(u2.ID()) != u2 {
		t.Error("lookups broken")
	}
	testutil.AssertEqual(t, "count", um.Count(), 2)

	um.Logout("save-1")
	if um.BySaveID("save-1") != nil {
		t.Error("session survived logout")
	}
	um.Logout("save-1") // no-op
	testutil.AssertEqual(t, "count after logout", um.Count(), 1)
}

func TestUser_Variables(t *testing.T) {
	reg, pub := newTestRegistry()
	u, _ := reg.Users().Login("save-1", "ann")
	pub.reset()

	v, err := NewUserVariable("rank", "gold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := u.AddVariable(v); err != nil {
		t.Fatalf("add: %v", err)
	}
	testutil.AssertEqual(t, "added events", len(pub.byType(EventUserVarAdded)), 1)

	dup, _ := NewUserVariable("rank", "silver")
	if err := u.AddVariable(dup); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("error = %v, expected ErrDuplicateName", err)
	}

	if err := v.SetValue("platinum"); err != nil {
		t.Fatalf("set: %v", err)
	}
	changed := pub.byType(EventUserVarChanged)
	if len(changed) != 1 || changed[0].User != "ann" || changed[0].Player != "save-1" {
		t.Errorf("changed events = %+v", changed)
	}

	u.RemoveVariable("rank")
	if u.Variable("rank") != nil {
		t.Error("variable still present after removal")
	}
}
