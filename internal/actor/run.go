package actor

import (
	"context"
	"fmt"

	"github.com/go-mclib/gateway/internal/gwerr"
	"github.com/go-mclib/gateway/internal/netio"
	"github.com/go-mclib/gateway/internal/packets"
	"github.com/go-mclib/gateway/internal/route"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/values"
)

// RunSession drives one client connection end to end: ReadingHandshake,
// RoutingDecision, then StatusExchange or LoginExchange, finally
// Transferring until the connection closes. It is the supervisor's sole
// entry point per accepted connection; everything else in this package is
// a phase it calls into.
//
// The client and server sides of a connection are not run as two
// goroutines trading messages over session.MinecraftCommunication channels:
// a single session's phases are strictly sequential (you cannot transfer
// before login completes, you cannot log in before routing), so one
// goroutine running them in order is the same state machine with less
// synchronization. MinecraftCommunication stays in internal/session as the
// documented message shape a future multi-hop or hot-swap-backend feature
// would use to hand a session between actors running on different
// goroutines; today's routes never need that handoff.
func RunSession(ctx context.Context, sess *session.Session, deps *Deps) error {
	defer sess.ClientConn.Close()

	hs, err := handshakePhase(ctx, sess, deps)
	if err != nil {
		return err
	}

	rt, ok := routingPhase(sess, deps, hs)
	if !ok {
		return unknownServer(sess, hs, deps)
	}
	sess.SetRoute(rt)

	switch hs.NextState {
	case packets.IntentStatus:
		statusCtx, cancel := context.WithTimeout(ctx, deps.Timeouts.Status)
		defer cancel()
		return runStatusExchange(statusCtx, sess, rt, hs, deps)
	case packets.IntentLogin, packets.IntentTransfer:
		loginCtx, cancel := context.WithTimeout(ctx, deps.Timeouts.Login)
		defer cancel()
		return runLoginExchange(loginCtx, sess, rt, hs, deps)
	default:
		return fmt.Errorf("%w: next_state=%d", gwerr.ErrUnexpectedPacket, hs.NextState)
	}
}

func handshakePhase(ctx context.Context, sess *session.Session, deps *Deps) (*packets.Handshake, error) {
	hsCtx, cancel := context.WithTimeout(ctx, deps.Timeouts.Handshake)
	defer cancel()

	pr := netio.NewPacketReader(sess.ClientConn)
	hs, err := readHandshake(hsCtx, pr)
	if err != nil {
		return nil, err
	}
	sess.SetProtocolVersion(int32(hs.ProtocolVersion))
	return hs, nil
}

// routingPhase resolves the backend for this session's hostname, stripping
// any Forge/FML handshake suffix first, per spec.md §4.9.
func routingPhase(sess *session.Session, deps *Deps, hs *packets.Handshake) (*session.Route, bool) {
	hostname := route.StripForgeSuffix(string(hs.ServerAddress))
	return deps.Resolver.Resolve(hostname)
}

// unknownServer handles a RoutingDecision miss: status pings get a generic
// "unknown server" MOTD instead of a hard close (so server-list entries show
// something instead of erroring), login attempts are disconnected outright.
func unknownServer(sess *session.Session, hs *packets.Handshake, deps *Deps) error {
	pw := netio.NewPacketWriter(sess.ClientConn)
	if hs.NextState == packets.IntentStatus {
		pr := netio.NewPacketReader(sess.ClientConn)
		if _, err := pr.ReadPacket(); err != nil {
			return nil
		}
		payload := unknownServerMOTD
		if deps.UnknownServerMOTD != nil {
			payload = values.String(deps.UnknownServerMOTD)
		}
		resp, err := packets.Encode(&packets.StatusResponse{JSON: payload})
		if err != nil {
			return err
		}
		return pw.WritePacket(resp)
	}
	sess.SetState(session.StateClosing)
	return disconnectLogin(pw, "Unknown server.")
}

// unknownServerMOTD is the fallback status payload for a hostname with no
// matching route. internal/motd renders real per-route payloads once a
// route is found; this one never carries player counts or a favicon.
const unknownServerMOTD = values.String(`{"version":{"name":"unknown","protocol":0},"players":{"max":0,"online":0},"description":{"text":"Unknown server."}}`)
