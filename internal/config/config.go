// Package config loads and hot-reloads the gateway's routing table and
// global settings, and turns them into the supervisor.ProviderMessage
// stream the supervisor's route resolver consumes, per spec.md §4.8's
// configuration-provider protocol.
package config

import (
	"fmt"
	"time"

	"github.com/go-mclib/gateway/internal/actor"
	"github.com/go-mclib/gateway/internal/backend"
	"github.com/go-mclib/gateway/internal/motd"
	"github.com/go-mclib/gateway/internal/policy"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/supervisor"
)

// TimeoutsSpec mirrors actor.Timeouts in the on-disk document.
type TimeoutsSpec struct {
	Handshake time.Duration `yaml:"handshake"`
	Status    time.Duration `yaml:"status"`
	Login     time.Duration `yaml:"login"`
	Idle      time.Duration `yaml:"idle"`
}

func (t TimeoutsSpec) toActorTimeouts() actor.Timeouts {
	d := actor.DefaultTimeouts()
	if t.Handshake != 0 {
		d.Handshake = t.Handshake
	}
	if t.Status != 0 {
		d.Status = t.Status
	}
	if t.Login != 0 {
		d.Login = t.Login
	}
	if t.Idle != 0 {
		d.Idle = t.Idle
	}
	return d
}

// MOTDSpec is one route's per-state MOTD customization, decoded from YAML
// and converted into motd.Override values the motd.Builder can apply.
type MOTDSpec struct {
	Description string `yaml:"description"`
	MaxPlayers  int    `yaml:"max_players"`
	FavIcon     string `yaml:"favicon"`
}

func (m *MOTDSpec) toOverride() *motd.Override {
	if m == nil {
		return nil
	}
	return &motd.Override{
		DescriptionTemplate: m.Description,
		MaxPlayers:          m.MaxPlayers,
		FavIcon:             m.FavIcon,
	}
}

// RouteSpec is one routing table entry as written in the YAML config file.
type RouteSpec struct {
	Hostname  string    `yaml:"hostname"`
	Backend   string    `yaml:"backend"`
	ProxyMode string    `yaml:"proxy_mode"`
	MOTD      *MOTDSpec `yaml:"motd,omitempty"`

	// StartCommand/StopCommand, when set, make this route's backend
	// process gateway-managed via backend.CommandProvider instead of the
	// default backend.ManualProvider. Status is probed by dialing Backend.
	StartCommand string `yaml:"start_command,omitempty"`
	StopCommand  string `yaml:"stop_command,omitempty"`
}

// buildProcessProvider returns this route's backend.Provider: a
// CommandProvider if either lifecycle command is configured, otherwise the
// default ManualProvider (a backend the gateway neither starts nor stops).
func (rs RouteSpec) buildProcessProvider() backend.Provider {
	if rs.StartCommand == "" && rs.StopCommand == "" {
		return backend.ManualProvider{}
	}
	return backend.NewCommandProvider(rs.StartCommand, rs.StopCommand, rs.Backend)
}

// AccessListSpec mirrors Infrarust's AccessListConfig<T> (enabled +
// whitelist/blacklist), decoded once per filter kind below.
type AccessListSpec struct {
	Enabled   bool     `yaml:"enabled"`
	Whitelist []string `yaml:"whitelist"`
	Blacklist []string `yaml:"blacklist"`
}

// RateLimiterSpec mirrors Infrarust's RateLimiterConfig.
type RateLimiterSpec struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	BurstSize         int     `yaml:"burst_size"`
}

// FilterSpec is the top-level policy chain configuration, mirroring
// Infrarust's FilterConfig: one optional block per filter, applied to the
// chain in the fixed rate-limit/ip/name/uuid/ban order spec.md §4.6 and
// internal/policy.Chain's doc comment both specify.
type FilterSpec struct {
	RateLimiter *RateLimiterSpec `yaml:"rate_limiter,omitempty"`
	IPFilter    *AccessListSpec  `yaml:"ip_filter,omitempty"`
	NameFilter  *AccessListSpec  `yaml:"name_filter,omitempty"`
	IDFilter    *AccessListSpec  `yaml:"id_filter,omitempty"`
}

func proxyModeFromString(s string) (session.ProxyMode, error) {
	switch s {
	case "", "passthrough":
		return session.ModePassthrough, nil
	case "offline":
		return session.ModeOffline, nil
	case "client_only":
		return session.ModeClientOnly, nil
	case "server_only":
		return session.ModeServerOnly, nil
	default:
		return 0, fmt.Errorf("unknown proxy_mode %q", s)
	}
}

// Config is the full on-disk document: listener settings plus the routing
// table. FileProvider decodes exactly this shape from YAML.
type Config struct {
	Listen               string       `yaml:"listen"`
	MaxConnections       int          `yaml:"max_connections"`
	CompressionThreshold int32        `yaml:"compression_threshold"`
	Timeouts             TimeoutsSpec `yaml:"timeouts"`
	BanFile              string       `yaml:"ban_file"`
	Routes               []RouteSpec  `yaml:"routes"`

	VersionName     string `yaml:"version_name"`
	ProtocolVersion int32  `yaml:"protocol_version"`

	StatusCache struct {
		MaxEntries int           `yaml:"max_entries"`
		DefaultTTL time.Duration `yaml:"default_ttl"`
	} `yaml:"status_cache"`

	BufferPool struct {
		MaxCapacity int `yaml:"max_capacity"`
		MaxRetained int `yaml:"max_retained"`
	} `yaml:"buffer_pool"`

	Filters FilterSpec `yaml:"filters"`
}

// toAccessList converts a possibly-nil AccessListSpec into a policy.AccessList,
// defaulting to a disabled (always-pass) list.
func (a *AccessListSpec) toAccessList() policy.AccessList {
	if a == nil {
		return policy.NewAccessList(false, nil, nil)
	}
	return policy.NewAccessList(a.Enabled, a.Whitelist, a.Blacklist)
}

// BuildFilters assembles the ordered policy.Chain filters this document
// configures (rate limiter, IP/name/UUID access lists), in the fixed order
// internal/policy.Chain expects. ban is appended separately by the caller
// once the banstore.Store is open, since FilterSpec carries no ban-store
// path of its own (Config.BanFile does).
func (c *Config) BuildFilters() []policy.Filter {
	var filters []policy.Filter
	rl := c.Filters.RateLimiter
	if rl != nil && rl.Enabled {
		filters = append(filters, policy.NewRateLimiter(rl.RequestsPerMinute, rl.BurstSize))
	}
	filters = append(filters,
		policy.IPFilter{List: c.Filters.IPFilter.toAccessList()},
		policy.NameFilter{List: c.Filters.NameFilter.toAccessList()},
		policy.IDFilter{List: c.Filters.IDFilter.toAccessList()},
	)
	return filters
}

// SupervisorConfig extracts the listener settings supervisor.Config needs.
func (c *Config) SupervisorConfig() supervisor.Config {
	return supervisor.Config{
		ListenAddr:     c.Listen,
		MaxConnections: c.MaxConnections,
		Timeouts:       c.Timeouts.toActorTimeouts(),
	}
}

// BuildRoutes renders every RouteSpec's MOTD override (state
// StateOnline, since this is the normal listed-server case) via builder
// and returns the routing table keyed by hostname pattern, ready for a
// supervisor.ProviderMessage.
func (c *Config) BuildRoutes(builder *motd.Builder) (map[string]*session.Route, error) {
	routes := make(map[string]*session.Route, len(c.Routes))
	for _, rs := range c.Routes {
		mode, err := proxyModeFromString(rs.ProxyMode)
		if err != nil {
			return nil, fmt.Errorf("config: route %q: %w", rs.Hostname, err)
		}

		rt := &session.Route{
			HostnamePattern: rs.Hostname,
			BackendAddr:     rs.Backend,
			ProxyMode:       mode,
			Process:         rs.buildProcessProvider(),
		}
		if rs.MOTD != nil && builder != nil {
			payload, err := builder.Build(motd.StateOnline, rs.MOTD.toOverride(), 0, rs.MOTD.MaxPlayers, rs.Hostname)
			if err != nil {
				return nil, fmt.Errorf("config: route %q: %w", rs.Hostname, err)
			}
			rt.MOTDOverride = payload
		}
		routes[rs.Hostname] = rt
	}
	return routes, nil
}
