// Package motd builds the JSON status-response payload a route serves for
// each point in its backend's lifecycle, mirroring the enumerated MOTD
// kinds Infrarust's motd generator produces per server state
// (crates/infrarust/src/server/motd, generate_for_state /
// get_motd_config_for_state) instead of a single static string.
package motd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// State names the backend lifecycle point a status response is rendered
// for. These line up with internal/backend.Status plus the two states that
// have no backend-process equivalent (unknown route, imminent shutdown).
type State string

const (
	StateOnline           State = "online"
	StateStarting         State = "starting"
	StateStopping         State = "stopping"
	StateCrashed          State = "crashed"
	StateUnreachable      State = "unreachable"
	StateNotStarted       State = "not_started"
	StateImminentShutdown State = "imminent_shutdown"
	StateUnknownServer    State = "unknown_server"
)

// Override customizes one State's rendering for a single route. Zero
// values mean "use the builder's default for this state".
type Override struct {
	DescriptionTemplate string
	MaxPlayers          int
	FavIcon             string // data:image/png;base64,... or empty
}

// Vars is what a DescriptionTemplate's {{ }} placeholders can reference.
type Vars struct {
	Online   int
	Max      int
	Hostname string
}

type statusPayload struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int32  `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	Favicon string `json:"favicon,omitempty"`
}

// Builder renders status payloads for one version banner, with built-in
// defaults for every State that a per-route Override can customize.
type Builder struct {
	versionName     string
	protocolVersion int32
	defaults        map[State]Override
}

// NewBuilder creates a Builder reporting versionName/protocolVersion in the
// rendered payload's version block, seeded with Infrarust's default wording
// for every non-online lifecycle state.
func NewBuilder(versionName string, protocolVersion int32) *Builder {
	return &Builder{
		versionName:     versionName,
		protocolVersion: protocolVersion,
		defaults: map[State]Override{
			StateUnknownServer:    {DescriptionTemplate: "Unknown server."},
			StateUnreachable:      {DescriptionTemplate: "This server is currently unreachable."},
			StateNotStarted:       {DescriptionTemplate: "Server is offline."},
			StateStarting:         {DescriptionTemplate: "Server is starting, please wait..."},
			StateStopping:         {DescriptionTemplate: "Server is shutting down."},
			StateCrashed:          {DescriptionTemplate: "Server crashed and is restarting."},
			StateImminentShutdown: {DescriptionTemplate: "Server is restarting shortly."},
			StateOnline:           {DescriptionTemplate: "{{.Hostname}}"},
		},
	}
}

// Build renders state's status JSON, applying override (if non-nil) on top
// of the builder's default for that state, with online/max player counts
// and the requested hostname available to the description template.
func (b *Builder) Build(state State, override *Override, online, max int, hostname string) ([]byte, error) {
	ov := b.defaults[state]
	if override != nil {
		ov = mergeOverride(ov, *override)
	}

	desc, err := renderTemplate(ov.DescriptionTemplate, Vars{Online: online, Max: max, Hostname: hostname})
	if err != nil {
		return nil, fmt.Errorf("motd: rendering %s description: %w", state, err)
	}

	maxPlayers := max
	if ov.MaxPlayers != 0 {
		maxPlayers = ov.MaxPlayers
	}

	var payload statusPayload
	payload.Version.Name = b.versionName
	payload.Version.Protocol = b.protocolVersion
	payload.Players.Max = maxPlayers
	payload.Players.Online = online
	payload.Description.Text = desc
	payload.Favicon = ov.FavIcon

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("motd: marshaling %s payload: %w", state, err)
	}
	return out, nil
}

func mergeOverride(base, override Override) Override {
	if override.DescriptionTemplate != "" {
		base.DescriptionTemplate = override.DescriptionTemplate
	}
	if override.MaxPlayers != 0 {
		base.MaxPlayers = override.MaxPlayers
	}
	if override.FavIcon != "" {
		base.FavIcon = override.FavIcon
	}
	return base
}

// renderTemplate only invokes text/template when the description actually
// contains a placeholder — most overrides are plain static text and don't
// need a template parse on every status request.
func renderTemplate(text string, vars Vars) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("motd").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
