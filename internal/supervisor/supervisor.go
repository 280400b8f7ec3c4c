// Package supervisor owns every shared, long-lived resource a running
// gateway needs — the route resolver, the policy chain, the status cache,
// the buffer pool, and the set of active sessions — and is the only thing
// that accepts connections and spawns actors.
package supervisor

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/go-mclib/gateway/internal/actor"
	"github.com/go-mclib/gateway/internal/bufferpool"
	"github.com/go-mclib/gateway/internal/motd"
	"github.com/go-mclib/gateway/internal/netio"
	"github.com/go-mclib/gateway/internal/policy"
	"github.com/go-mclib/gateway/internal/route"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/statuscache"
	"github.com/go-mclib/gateway/internal/telemetry"
)

// Config is the subset of global configuration the supervisor enforces
// itself rather than delegating to a collaborator (resolver, policy, cache).
type Config struct {
	ListenAddr     string
	MaxConnections int
	Timeouts       actor.Timeouts
}

// Supervisor accepts inbound connections, enforces MaxConnections, and
// spawns one actor.RunSession per accepted connection, wiring it to the
// shared collaborators it owns.
type Supervisor struct {
	cfg      Config
	resolver *route.Resolver
	policy   *policy.Chain
	cache    *statuscache.Cache
	pool     *bufferpool.Pool
	log      *zap.Logger
	telem    telemetry.Exporter
	motd     *motd.Builder

	fetchStatus func(ctx context.Context, rt *session.Route, protocolVersion int32) ([]byte, error)

	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Session

	shutdown *ShutdownController
}

// New wires a Supervisor from its collaborators. fetchStatus is the
// callback used to populate the status cache on a miss (dialing the
// backend and performing the status handshake); it is supplied by the
// caller rather than built here so tests can substitute a stub. telem and
// motdBuilder may be nil — a nil telem records nothing, a nil motdBuilder
// leaves an unreachable backend without a status payload (see
// actor.Deps.MOTDBuilder).
func New(cfg Config, resolver *route.Resolver, chain *policy.Chain, cache *statuscache.Cache, pool *bufferpool.Pool, log *zap.Logger, fetchStatus func(ctx context.Context, rt *session.Route, protocolVersion int32) ([]byte, error), telem telemetry.Exporter, motdBuilder *motd.Builder) *Supervisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Supervisor{
		cfg:         cfg,
		resolver:    resolver,
		policy:      chain,
		cache:       cache,
		pool:        pool,
		log:         log,
		telem:       telem,
		motd:        motdBuilder,
		fetchStatus: fetchStatus,
		sessions:    make(map[uuid.UUID]*session.Session),
		shutdown:    NewShutdownController(),
	}
}

// Shutdown returns the controller callers use to stop a running Serve loop
// and drain in-flight sessions.
func (s *Supervisor) Shutdown() *ShutdownController { return s.shutdown }

// ActiveSessions returns the number of sessions currently in flight.
func (s *Supervisor) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Serve accepts connections on cfg.ListenAddr until ctx is cancelled or
// Shutdown() fires, spawning one goroutine per accepted connection.
func (s *Supervisor) Serve(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	s.log.Info("listening", zap.String("addr", s.cfg.ListenAddr))

	go func() {
		select {
		case <-s.shutdown.Done():
		case <-ctx.Done():
		}
		ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			wg.Wait()
			select {
			case <-s.shutdown.Done():
				return nil
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		if s.cfg.MaxConnections > 0 && s.ActiveSessions() >= s.cfg.MaxConnections {
			conn.Close()
			s.log.Warn("rejected connection: max_connections reached", zap.String("remote", conn.RemoteAddr().String()))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Supervisor) handleConn(ctx context.Context, conn net.Conn) {
	sess := session.New(netio.NewConn(conn))
	s.addSession(sess)
	defer s.removeSession(sess)

	remote := conn.RemoteAddr().String()
	if s.telem != nil {
		s.telem.Export(ctx, telemetry.Event{Kind: telemetry.EventSessionAccepted, RemoteIP: remote})
	}

	deps := &actor.Deps{
		Resolver:    s.resolver,
		Policy:      s.policy,
		Status:      s.cache,
		Timeouts:    s.cfg.Timeouts,
		FetchStatus: s.fetchStatus,
		Telemetry:   s.telem,
		MOTDBuilder: s.motd,
		DialBackend: func(ctx context.Context, rt *session.Route) (*netio.Conn, error) {
			return netio.DialBackend(ctx, rt.BackendAddr)
		},
	}

	err := actor.RunSession(ctx, sess, deps)
	if s.telem != nil {
		s.telem.Export(ctx, telemetry.Event{Kind: telemetry.EventSessionClosed, RemoteIP: remote, Username: sess.Username()})
	}
	if err != nil {
		s.log.Debug("session ended",
			zap.Stringer("id", sess.ID),
			zap.String("remote", remote),
			zap.Error(err),
		)
	}
}

func (s *Supervisor) addSession(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *Supervisor) removeSession(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess.ID)
}
