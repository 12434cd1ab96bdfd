package console

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-presence/internal/presence"
	"github.com/pixil98/go-presence/internal/wire"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = sprig.TxtFuncMap()

var zoneListTemplate = template.Must(template.New("zones").Funcs(templateFuncs).Parse(
	`{{ if not . }}no zones
{{ else }}{{ range . }}{{ .Name }}{{ if .Active }} [active]{{ end }}: {{ .Groups }} {{ .Groups | plural "group" "groups" }}, {{ .Rooms }} {{ .Rooms | plural "room" "rooms" }}
{{ end }}{{ end }}`))

var zoneTemplate = template.Must(template.New("zone").Funcs(templateFuncs).Parse(
	`zone {{ .Name }}{{ if .Active }} [active]{{ end }}
{{- range .Groups }}
  {{ .Name }}: {{ .Rooms }} {{ .Rooms | plural "room" "rooms" }}, {{ .Subscribers }} {{ .Subscribers | plural "subscriber" "subscribers" }}
{{- end }}
`))

var groupTemplate = template.Must(template.New("group").Funcs(templateFuncs).Parse(
	`group {{ .Zone }}/{{ .Name }}
{{- range .Rooms }}
  [{{ .ID }}] {{ .Name }}{{ if .Flags }} ({{ .Flags | join "," }}){{ end }} users {{ .Users }}/{{ .UserLimit }}{{ if .Game }} spectators {{ .Spectators }}/{{ .SpectatorLimit }}{{ end }}
{{- end }}
{{- if .Subscribers }}
subscribers: {{ .Subscribers | join ", " }}
{{- end }}
`))

var roomTemplate = template.Must(template.New("room").Funcs(templateFuncs).Parse(
	`room [{{ .ID }}] {{ .Zone }}/{{ .Group }}/{{ .Name }}
{{- if .Flags }}
flags: {{ .Flags | join "," }}
{{- end }}
users: {{ .Users }}/{{ .UserLimit }}{{ if .Game }}  spectators: {{ .Spectators }}/{{ .SpectatorLimit }}{{ end }}
{{- range .Variables }}
  {{ .Name }} ({{ .Type }}{{ if .Attrs }}, {{ .Attrs | join "," }}{{ end }}) = {{ .Value }}
{{- end }}
`))

type zoneSummary struct {
	Name   string
	Active bool
	Groups int
	Rooms  int
}

type groupSummary struct {
	Name        string
	Rooms       int
	Subscribers int
}

type zoneView struct {
	Name   string
	Active bool
	Groups []groupSummary
}

type roomSummary struct {
	ID             int32
	Name           string
	Flags          []string
	Game           bool
	Users          int16
	UserLimit      int16
	Spectators     int16
	SpectatorLimit int16
}

type groupView struct {
	Zone        string
	Name        string
	Rooms       []roomSummary
	Subscribers []string
}

type variableView struct {
	Name  string
	Type  string
	Attrs []string
	Value string
}

type roomView struct {
	roomSummary
	Zone      string
	Group     string
	Variables []variableView
}

func renderZoneList(zones []zoneSummary) (string, error) {
	return execute(zoneListTemplate, zones)
}

func renderZone(z *presence.Zone) (string, error) {
	view := zoneView{
		Name:   z.Name(),
		Active: z.IsActive(),
	}
	for _, name := range z.RoomGroupNames() {
		g := z.RoomGroup(name)
		if g == nil {
			continue
		}
		view.Groups = append(view.Groups, groupSummary{
			Name:        g.Name(),
			Rooms:       len(g.RoomNames()),
			Subscribers: g.SubscriberCount(),
		})
	}
	return execute(zoneTemplate, view)
}

func renderGroup(g *presence.RoomGroup) (string, error) {
	view := groupView{
		Zone: g.ZoneName(),
		Name: g.Name(),
	}
	for _, room := range g.Rooms() {
		view.Rooms = append(view.Rooms, summarizeRoom(room))
	}
	for _, sub := range g.Subscribers() {
		view.Subscribers = append(view.Subscribers, sub.SaveID())
	}
	return execute(groupTemplate, view)
}

func renderRoom(room *presence.Room) (string, error) {
	view := roomView{
		roomSummary: summarizeRoom(room),
		Zone:        room.ZoneName(),
		Group:       room.GroupName(),
	}
	for _, v := range room.Variables() {
		var attrs []string
		if v.IsPrivate() {
			attrs = append(attrs, "private")
		}
		if v.IsPersistent() {
			attrs = append(attrs, "persistent")
		}
		if v.IsDynamic() {
			attrs = append(attrs, fmt.Sprintf("dynamic:%s", v.ResolutionKey()))
		}
		view.Variables = append(view.Variables, variableView{
			Name:  v.Name(),
			Type:  v.Type().String(),
			Attrs: attrs,
			Value: formatValue(v.Value()),
		})
	}
	return execute(roomTemplate, view)
}

func summarizeRoom(room *presence.Room) roomSummary {
	var flags []string
	if room.IsGame() {
		flags = append(flags, "game")
	}
	if room.IsHidden() {
		flags = append(flags, "hidden")
	}
	if room.IsPasswordProtected() {
		flags = append(flags, "password")
	}
	return roomSummary{
		ID:             room.ID(),
		Name:           room.Name(),
		Flags:          flags,
		Game:           room.IsGame(),
		Users:          room.UserCount(),
		UserLimit:      room.UserLimit(),
		Spectators:     room.SpectatorCount(),
		SpectatorLimit: room.SpectatorLimit(),
	}
}

func formatValue(v wire.Value) string {
	switch val := v.(type) {
	case wire.Null:
		return "null"
	case wire.String:
		return fmt.Sprintf("%q", string(val))
	default:
		return fmt.Sprintf("%v", wire.Native(v))
	}
}

func execute(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	err := tmpl.Execute(&sb, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return sb.String(), nil
}
