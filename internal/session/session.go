// Package session holds the per-connection state shared between a client
// actor and its paired server actor: the session record itself, the routing
// table entry it was matched against, and the typed inter-actor message
// envelope.
package session

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/go-mclib/gateway/internal/backend"
	"github.com/go-mclib/gateway/internal/netio"
)

// State is the protocol phase a session is currently in.
type State uint8

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StateTransfer
	StatePlay
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StateTransfer:
		return "transfer"
	case StatePlay:
		return "play"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// ProxyMode controls how a route's connections are terminated/forwarded.
type ProxyMode uint8

const (
	// ModePassthrough forwards every packet verbatim; the backend handles
	// its own login (online or offline) without the gateway intervening.
	ModePassthrough ProxyMode = iota
	// ModeOffline terminates login at the gateway and synthesizes an
	// offline-mode LoginSuccess, regardless of what the backend expects.
	ModeOffline
	// ModeClientOnly performs the online-mode encryption handshake with the
	// client but forwards to the backend in offline mode.
	ModeClientOnly
	// ModeServerOnly forwards the client's handshake verbatim but the
	// gateway itself authenticates to the backend as the connecting player.
	ModeServerOnly
)

// Route is a resolved routing table entry: where a hostname pattern sends
// connections, and how the gateway should mediate the login handshake.
type Route struct {
	HostnamePattern string
	BackendAddr     string
	ProxyMode       ProxyMode
	MOTDOverride    []byte // pre-rendered JSON, nil if none

	// Process manages this route's backend server process lifecycle. Nil is
	// valid and treated as backend.ManualProvider{} (a backend the gateway
	// doesn't start or stop, always assumed running).
	Process backend.Provider
}

// Session is created at accept and lives for the lifetime of one client
// connection (and its paired backend connection, once established).
//
// State, CompressionThreshold, and Username are accessed by the client actor
// (writer) and read by logging/telemetry from other goroutines, hence the
// atomic fields — matching the teacher-pack's pattern of atomic.Value-backed
// connection state (see gate's ConnectionSession equivalent referenced in
// SPEC_FULL.md's DOMAIN STACK).
type Session struct {
	ID         uuid.UUID
	ClientConn *netio.Conn
	Deadline   time.Time

	state                atomic.Uint32
	protocolVersion      atomic.Int32
	route                atomic.Pointer[Route]
	username             atomic.String
	compressionThreshold atomic.Int32 // -1 = disabled
}

// New creates a Session in StateHandshake with compression disabled.
func New(clientConn *netio.Conn) *Session {
	s := &Session{
		ID:         uuid.New(),
		ClientConn: clientConn,
	}
	s.state.Store(uint32(StateHandshake))
	s.compressionThreshold.Store(-1)
	return s
}

func (s *Session) State() State                { return State(s.state.Load()) }
func (s *Session) SetState(state State)        { s.state.Store(uint32(state)) }
func (s *Session) ProtocolVersion() int32      { return s.protocolVersion.Load() }
func (s *Session) SetProtocolVersion(v int32)  { s.protocolVersion.Store(v) }
func (s *Session) Username() string            { return s.username.Load() }
func (s *Session) SetUsername(name string)     { s.username.Store(name) }

// Route returns the resolved route, or nil if routing hasn't happened yet.
func (s *Session) Route() *Route     { return s.route.Load() }
func (s *Session) SetRoute(r *Route) { s.route.Store(r) }

// CompressionThreshold returns the negotiated threshold, or -1 if compression
// has not been enabled for this session.
func (s *Session) CompressionThreshold() int32 { return s.compressionThreshold.Load() }
func (s *Session) SetCompressionThreshold(t int32) {
	s.compressionThreshold.Store(t)
}
