// Package actor implements the per-session state machine: RunSession drives
// a connection's client and backend sides in order on one goroutine, with no
// channels between them (see run.go).
package actor

import (
	"context"
	"time"

	"github.com/go-mclib/gateway/internal/motd"
	"github.com/go-mclib/gateway/internal/netio"
	"github.com/go-mclib/gateway/internal/policy"
	"github.com/go-mclib/gateway/internal/route"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/statuscache"
	"github.com/go-mclib/gateway/internal/telemetry"
)

// Timeouts bounds how long each protocol phase may take before the session
// is closed with TimedOut, per spec §5.
type Timeouts struct {
	Handshake time.Duration
	Status    time.Duration
	Login     time.Duration
	Idle      time.Duration
}

// DefaultTimeouts matches spec.md §5's stated defaults.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Handshake: 10 * time.Second,
		Status:    5 * time.Second,
		Login:     30 * time.Second,
		Idle:      5 * time.Minute,
	}
}

// ChannelCapacity is a bound for inter-actor channels. RunSession creates no
// such channel, so nothing in this package uses it.
const ChannelCapacity = 64

// Deps are the supervisor-owned shared resources an actor pair needs for one
// connection. None of them are mutated by the actor itself.
type Deps struct {
	Resolver *route.Resolver
	Policy   *policy.Chain
	Status   *statuscache.Cache
	Timeouts Timeouts

	// FetchStatus retrieves a fresh status payload from the backend named by
	// rt, used as the statuscache.FetchFunc on a cache miss.
	FetchStatus func(ctx context.Context, rt *session.Route, protocolVersion int32) ([]byte, error)

	// DialBackend opens a connection to rt's backend. Separated from
	// internal/netio.DialBackend so tests can substitute an in-memory pipe.
	DialBackend func(ctx context.Context, rt *session.Route) (*netio.Conn, error)

	// Telemetry records session lifecycle/policy events. Nil is valid and
	// means "record nothing" — callers always nil-check before use rather
	// than requiring every caller to pass telemetry.NopExporter{}.
	Telemetry telemetry.Exporter

	// MOTDBuilder renders the status payload served when the backend is
	// unreachable and the route has no MOTDOverride. Nil means there is no
	// such payload and the status exchange ends with ErrBackendUnreachable.
	// Unknown-route pings do not use it (see UnknownServerMOTD).
	MOTDBuilder *motd.Builder

	// UnknownServerMOTD overrides the static unknownServerMOTD fallback
	// served for status pings with no matching route. Nil uses the
	// built-in default.
	UnknownServerMOTD []byte
}
