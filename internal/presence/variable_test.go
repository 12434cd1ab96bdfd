package presence

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-presence/internal/wire"
)

func TestRoomVariable_RoundTrip(t *testing.T) {
	tests := map[string]struct {
		value any
		opts  []RoomVariableOpt
		exp   wire.Value
	}{
		"null":               {value: nil, exp: wire.Null{}},
		"bool":               {value: true, exp: wire.Bool(true)},
		"int":                {value: 42, exp: wire.Int(42)},
		"double":             {value: 9.75, exp: wire.Double(9.75)},
		"string":             {value: "lobby music", exp: wire.String("lobby music")},
		"object":             {value: []byte{0xde, 0xad}, exp: wire.Object([]byte{0xde, 0xad})},
		"array":              {value: []any{1, "two", 3.0}, exp: wire.Array{wire.Int(1), wire.String("two"), wire.Double(3)}},
		"private":            {value: "secret", opts: []RoomVariableOpt{WithPrivate()}, exp: wire.String("secret")},
		"persistent":         {value: 1, opts: []RoomVariableOpt{WithPersistent()}, exp: wire.Int(1)},
		"private persistent": {value: nil, opts: []RoomVariableOpt{WithPrivate(), WithPersistent()}, exp: wire.Null{}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := NewRoomVariable("v", tt.value, tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			w := wire.NewWriter()
			if err := v.Encode(w); err != nil {
				t.Fatalf("encode: %v", err)
			}

			got, err := DecodeRoomVariable(wire.NewReader(w.Bytes()))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			testutil.AssertEqual(t, "name", got.Name(), v.Name())
			testutil.AssertEqual(t, "private", got.IsPrivate(), v.IsPrivate())
			testutil.AssertEqual(t, "persistent", got.IsPersistent(), v.IsPersistent())
			if !reflect.DeepEqual(got.Value(), tt.exp) {
				t.Errorf("value = %#v, expected %#v", got.Value(), tt.exp)
			}
		})
	}
}

func TestUserVariable_RoundTrip(t *testing.T) {
	v, err := NewUserVariable("score", 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := wire.NewWriter()
	if err := v.Encode(w); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeUserVariable(wire.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	testutil.AssertEqual(t, "name", got.Name(), "score")
	if !reflect.DeepEqual(got.Value(), wire.Int(1500)) {
		t.Errorf("value = %#v, expected Int(1500)", got.Value())
	}
}

func TestNewRoomVariable_BadType(t *testing.T) {
	_, err := NewRoomVariable("v", struct{}{})
	if !errors.Is(err, wire.ErrBadValueType) {
		t.Errorf("error = %v, expected ErrBadValueType", err)
	}
}

func TestRoomVariable_SetValue(t *testing.T) {
	reg, pub := newTestRegistry()
	room := mustRoom(t, reg, "z", "g", RoomSettings{Name: "r"})

	v, _ := NewRoomVariable("round", 1)
	if err := room.AddVariable(v); err != nil {
		t.Fatalf("adding variable: %v", err)
	}
	pub.reset()

	if err := v.SetValue(2); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if !reflect.DeepEqual(v.Value(), wire.Int(2)) {
		t.Errorf("value = %#v, expected Int(2)", v.Value())
	}

	changed := pub.byType(EventRoomVarChanged)
	if len(changed) != 1 {
		t.Fatalf("expected 1 changed event, got %d", len(changed))
	}
	testutil.AssertEqual(t, "event zone", changed[0].Zone, "z")
	testutil.AssertEqual(t, "event room", changed[0].Room, "r")
	testutil.AssertEqual(t, "event variable", changed[0].Variable, "round")
	testutil.AssertEqual(t, "event value", changed[0].Value.(int32), int32(2))

	// A value the wire cannot carry is rejected and keeps the old value.
	if err := v.SetValue(make(chan int)); !errors.Is(err, wire.ErrBadValueType) {
		t.Errorf("error = %v, expected ErrBadValueType", err)
	}
	if !reflect.DeepEqual(v.Value(), wire.Int(2)) {
		t.Errorf("value after bad set = %#v, expected Int(2)", v.Value())
	}
}

func TestDynamicRoomVariable_Populate(t *testing.T) {
	reg, _ := newTestRegistry()
	room := mustRoom(t, reg, "z", "g", RoomSettings{Name: "arena"})

	v := NewDynamicRoomVariable("playersOnline", "stats.online")
	if err := room.AddVariable(v); err != nil {
		t.Fatalf("adding variable: %v", err)
	}

	// No resolver registered: encodes the last-held value, initially null.
	w := wire.NewWriter()
	if err := room.Encode(w, false); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !reflect.DeepEqual(v.Value(), wire.Null{}) {
		t.Errorf("value = %#v, expected Null before resolution", v.Value())
	}

	var gotZone, gotGroup, gotKey string
	reg.Resolvers().Register("stats.online", func(zone, group string, r *Room, key string) (wire.Value, error) {
		gotZone, gotGroup, gotKey = zone, group, key
		return wire.Int(17), nil
	})

	w = wire.NewWriter()
	if err := room.Encode(w, false); err != nil {
		t.Fatalf("encode: %v", err)
	}

	testutil.AssertEqual(t, "resolver zone", gotZone, "z")
	testutil.AssertEqual(t, "resolver group", gotGroup, "g")
	testutil.AssertEqual(t, "resolver key", gotKey, "stats.online")
	if !reflect.DeepEqual(v.Value(), wire.Int(17)) {
		t.Errorf("value = %#v, expected Int(17)", v.Value())
	}

	// A failing resolver keeps the last successfully resolved value.
	reg.Resolvers().Register("stats.online", func(zone, group string, r *Room, key string) (wire.Value, error) {
		return nil, fmt.Errorf("backend down")
	})
	w = wire.NewWriter()
	if err := room.Encode(w, false); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !reflect.DeepEqual(v.Value(), wire.Int(17)) {
		t.Errorf("value = %#v, expected Int(17) after failed resolution", v.Value())
	}
}

// mustRoom creates zone z, group g, and one room in it.
func mustRoom(t *testing.T, reg *Registry, z, g string, settings RoomSettings) *Room {
	t.Helper()
	zone, err := reg.CreateZone(z)
	if err != nil {
		zone = reg.Zone(z)
		if zone == nil {
			t.Fatalf("creating zone: %v", err)
		}
	}
	group := zone.RoomGroup(g)
	if group == nil {
		group, err = zone.AddRoomGroup(g)
		if err != nil {
			t.Fatalf("creating group: %v", err)
		}
	}
	room, err := group.AddRoom(settings)
	if err != nil {
		t.Fatalf("creating room: %v", err)
	}
	return room
}
