package presence

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-presence/internal/wire"
)

// ZoneSpec is the bootstrap definition of a zone, loaded from a JSON asset
// at startup. It seeds the in-memory registry; runtime state is never
// written back.
type ZoneSpec struct {
	Active bool         `json:"active"`
	Groups []*GroupSpec `json:"groups"`
}

// Validate satisfies storage.ValidatingSpec.
func (z *ZoneSpec) Validate() error {
	el := errors.NewErrorList()

	seen := map[string]bool{}
	for i, g := range z.Groups {
		if err := g.Validate(); err != nil {
			el.Add(fmt.Errorf("group %d: %w", i, err))
		}
		if seen[g.Name] {
			el.Add(fmt.Errorf("duplicate group name %q", g.Name))
		}
		seen[g.Name] = true
	}

	return el.Err()
}

// GroupSpec defines one room group and its initial rooms.
type GroupSpec struct {
	Name  string      `json:"name"`
	Rooms []*RoomSpec `json:"rooms,omitempty"`
}

func (g *GroupSpec) Validate() error {
	el := errors.NewErrorList()

	if g.Name == "" {
		el.Add(fmt.Errorf("group name is required"))
	}

	seen := map[string]bool{}
	for i, r := range g.Rooms {
		if err := r.Validate(); err != nil {
			el.Add(fmt.Errorf("room %d: %w", i, err))
		}
		if seen[r.Name] {
			el.Add(fmt.Errorf("duplicate room name %q", r.Name))
		}
		seen[r.Name] = true
	}

	return el.Err()
}

// RoomSpec defines one room to create at bootstrap.
type RoomSpec struct {
	Name                string          `json:"name"`
	IsGame              bool            `json:"is_game,omitempty"`
	IsHidden            bool            `json:"is_hidden,omitempty"`
	IsPasswordProtected bool            `json:"is_password_protected,omitempty"`
	UserLimit           int16           `json:"user_limit,omitempty"`
	SpectatorLimit      int16           `json:"spectator_limit,omitempty"`
	Variables           []*VariableSpec `json:"variables,omitempty"`
}

func (r *RoomSpec) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	if r.UserLimit < 0 {
		el.Add(fmt.Errorf("user_limit must not be negative"))
	}
	if r.SpectatorLimit < 0 {
		el.Add(fmt.Errorf("spectator_limit must not be negative"))
	}
	if !r.IsGame && r.SpectatorLimit > 0 {
		el.Add(fmt.Errorf("spectator_limit is only valid for game rooms"))
	}

	seen := map[string]bool{}
	for i, v := range r.Variables {
		if err := v.Validate(); err != nil {
			el.Add(fmt.Errorf("variable %d: %w", i, err))
		}
		if seen[v.Name] {
			el.Add(fmt.Errorf("duplicate variable name %q", v.Name))
		}
		seen[v.Name] = true
	}

	return el.Err()
}

// VariableSpec defines one initial room variable. A dynamic variable names
// a resolution key instead of carrying a value.
type VariableSpec struct {
	Name          string `json:"name"`
	Value         any    `json:"value,omitempty"`
	Private       bool   `json:"private,omitempty"`
	Persistent    bool   `json:"persistent,omitempty"`
	Dynamic       bool   `json:"dynamic,omitempty"`
	ResolutionKey string `json:"resolution_key,omitempty"`
}

func (v *VariableSpec) Validate() error {
	el := errors.NewErrorList()

	if v.Name == "" {
		el.Add(fmt.Errorf("variable name is required"))
	}
	if v.Dynamic && v.ResolutionKey == "" {
		el.Add(fmt.Errorf("variable %q: dynamic requires resolution_key", v.Name))
	}
	if !v.Dynamic && v.ResolutionKey != "" {
		el.Add(fmt.Errorf("variable %q: resolution_key requires dynamic", v.Name))
	}
	if !v.Dynamic && v.Value != nil {
		if _, err := wire.ValueOf(normalizeJSON(v.Value)); err != nil {
			el.Add(fmt.Errorf("variable %q: %w", v.Name, err))
		}
	}

	return el.Err()
}

// Build constructs the runtime variable from its spec.
func (v *VariableSpec) Build() (*RoomVariable, error) {
	var opts []RoomVariableOpt
	if v.Private {
		opts = append(opts, WithPrivate())
	}
	if v.Persistent {
		opts = append(opts, WithPersistent())
	}

	if v.Dynamic {
		return NewDynamicRoomVariable(v.Name, v.ResolutionKey, opts...), nil
	}
	return NewRoomVariable(v.Name, normalizeJSON(v.Value), opts...)
}

// normalizeJSON maps JSON decoding artifacts onto wire-representable kinds.
// JSON numbers arrive as float64; integral ones become ints so a spec value
// of 42 encodes as an integer rather than a double.
func normalizeJSON(v any) any {
	switch x := v.(type) {
	case float64:
		if x == float64(int32(x)) {
			return int32(x)
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = normalizeJSON(el)
		}
		return out
	default:
		return v
	}
}

// Bootstrap seeds reg with the given zone specs, keyed by zone name. Specs
// are assumed validated; structural errors (duplicate names) still surface.
func Bootstrap(reg *Registry, zones map[string]*ZoneSpec) error {
	for name, spec := range zones {
		zone, err := reg.CreateZone(name)
		if err != nil {
			return fmt.Errorf("creating zone %q: %w", name, err)
		}

		for _, gs := range spec.Groups {
			group, err := zone.AddRoomGroup(gs.Name)
			if err != nil {
				return fmt.Errorf("zone %q: %w", name, err)
			}

			for _, rs := range gs.Rooms {
				vars := make([]*RoomVariable, 0, len(rs.Variables))
				for _, vs := range rs.Variables {
					v, err := vs.Build()
					if err != nil {
						return fmt.Errorf("zone %q room %q: %w", name, rs.Name, err)
					}
					vars = append(vars, v)
				}

				_, err := group.AddRoom(RoomSettings{
					Name:                rs.Name,
					IsGame:              rs.IsGame,
					IsHidden:            rs.IsHidden,
					IsPasswordProtected: rs.IsPasswordProtected,
					UserLimit:           rs.UserLimit,
					SpectatorLimit:      rs.SpectatorLimit,
					Variables:           vars,
				})
				if err != nil {
					return fmt.Errorf("zone %q: %w", name, err)
				}
			}
		}

		if spec.Active {
			zone.Activate()
		}
	}

	return nil
}
