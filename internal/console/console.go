package console

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pixil98/go-presence/internal"
	"github.com/pixil98/go-presence/internal/display"
	"github.com/pixil98/go-presence/internal/presence"
	"github.com/pixil98/go-presence/internal/wire"
)

const banner = "go-presence admin console. Type 'help' for commands.\n"

const helpText = `zones                    list all zones
zone <zone>              show a zone and its room groups
group <zone> <group>     show a room group, its rooms, and its subscribers
room <zone> <id>         show a room and its variables
dump <zone> <id>         hex dump of a room's wire encoding
addgroup <zone> <name>   create a room group
rmgroup <zone> <name>    remove a room group and everything in it
quit                     close the session`

// Console runs line-oriented admin sessions against a presence registry.
// One Console serves any number of concurrent sessions; all state lives in
// the registry.
type Console struct {
	reg *presence.Registry
}

func NewConsole(reg *presence.Registry) *Console {
	return &Console{reg: reg}
}

// Run serves one session until the client quits, the input closes, or the
// context is canceled.
func (c *Console) Run(ctx context.Context, rw io.ReadWriter) error {
	br := bufio.NewReader(rw)

	_, err := rw.Write([]byte(banner))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := internal.Prompt(br, rw, "> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading command: %w", err)
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		if args[0] == "quit" || args[0] == "exit" {
			rw.Write([]byte("bye\n"))
			return nil
		}

		out, err := c.dispatch(br, rw, args[0], args[1:])
		if err != nil {
			fmt.Fprintf(rw, "error: %s\n", err)
			continue
		}
		if out != "" {
			rw.Write([]byte(out))
		}
	}
}

func (c *Console) dispatch(br *bufio.Reader, w io.Writer, cmd string, args []string) (string, error) {
	switch cmd {
	case "help":
		return display.Wrap(helpText) + "\n", nil
	case "zones":
		return c.cmdZones()
	case "zone":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: zone <zone>")
		}
		return c.cmdZone(args[0])
	case "group":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: group <zone> <group>")
		}
		return c.cmdGroup(args[0], args[1])
	case "room":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: room <zone> <id>")
		}
		return c.cmdRoom(args[0], args[1])
	case "dump":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: dump <zone> <id>")
		}
		return c.cmdDump(args[0], args[1])
	case "addgroup":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: addgroup <zone> <name>")
		}
		return c.cmdAddGroup(args[0], args[1])
	case "rmgroup":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: rmgroup <zone> <name>")
		}
		return c.cmdRemoveGroup(br, w, args[0], args[1])
	default:
		return "", fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

func (c *Console) cmdZones() (string, error) {
	names := c.reg.ZoneNames()
	summaries := make([]zoneSummary, 0, len(names))
	for _, name := range names {
		z := c.reg.Zone(name)
		if z == nil {
			continue
		}
		summaries = append(summaries, zoneSummary{
			Name:   z.Name(),
			Active: z.IsActive(),
			Groups: len(z.RoomGroupNames()),
			Rooms:  z.RoomCount(),
		})
	}
	return renderZoneList(summaries)
}

func (c *Console) cmdZone(name string) (string, error) {
	z, err := c.lookupZone(name)
	if err != nil {
		return "", err
	}
	return renderZone(z)
}

func (c *Console) cmdGroup(zone, group string) (string, error) {
	g, err := c.lookupGroup(zone, group)
	if err != nil {
		return "", err
	}
	return renderGroup(g)
}

func (c *Console) cmdRoom(zone, id string) (string, error) {
	room, err := c.lookupRoom(zone, id)
	if err != nil {
		return "", err
	}
	return renderRoom(room)
}

func (c *Console) cmdDump(zone, id string) (string, error) {
	room, err := c.lookupRoom(zone, id)
	if err != nil {
		return "", err
	}

	w := wire.NewWriter()
	if err := room.Encode(w, true); err != nil {
		return "", fmt.Errorf("encoding room: %w", err)
	}
	return hex.Dump(w.Bytes()), nil
}

func (c *Console) cmdAddGroup(zone, name string) (string, error) {
	z, err := c.lookupZone(zone)
	if err != nil {
		return "", err
	}
	if _, err := z.AddRoomGroup(name); err != nil {
		return "", err
	}
	return fmt.Sprintf("created group %q in zone %q\n", name, zone), nil
}

func (c *Console) cmdRemoveGroup(br *bufio.Reader, w io.Writer, zone, name string) (string, error) {
	z, err := c.lookupZone(zone)
	if err != nil {
		return "", err
	}
	g := z.RoomGroup(name)
	if g == nil {
		return "", fmt.Errorf("no group %q in zone %q", name, zone)
	}

	prompt := fmt.Sprintf("remove group %q with %d rooms and %d subscribers (Y/N)? ",
		name, len(g.RoomNames()), g.SubscriberCount())
	ok, err := internal.PromptYN(br, w, prompt)
	if err != nil {
		return "", err
	}
	if !ok {
		return "aborted\n", nil
	}

	z.RemoveRoomGroup(name)
	return fmt.Sprintf("removed group %q\n", name), nil
}

func (c *Console) lookupZone(name string) (*presence.Zone, error) {
	z := c.reg.Zone(name)
	if z == nil {
		return nil, fmt.Errorf("no zone %q", name)
	}
	return z, nil
}

func (c *Console) lookupGroup(zone, group string) (*presence.RoomGroup, error) {
	z, err := c.lookupZone(zone)
	if err != nil {
		return nil, err
	}
	g := z.RoomGroup(group)
	if g == nil {
		return nil, fmt.Errorf("no group %q in zone %q", group, zone)
	}
	return g, nil
}

func (c *Console) lookupRoom(zone, id string) (*presence.Room, error) {
	z, err := c.lookupZone(zone)
	if err != nil {
		return nil, err
	}
	roomID, err := strconv.ParseInt(id, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bad room id %q", id)
	}
	room := z.RoomByID(int32(roomID))
	if room == nil {
		return nil, fmt.Errorf("no room %s in zone %q", id, zone)
	}
	return room, nil
}
