package actor

import (
	"context"
	"fmt"
	"net"

	"github.com/go-mclib/gateway/internal/gwerr"
	"github.com/go-mclib/gateway/internal/motd"
	"github.com/go-mclib/gateway/internal/netio"
	"github.com/go-mclib/gateway/internal/packets"
	"github.com/go-mclib/gateway/internal/policy"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/statuscache"
	"github.com/go-mclib/gateway/internal/telemetry"
	"github.com/go-mclib/gateway/internal/values"
)

// runStatusExchange implements the client actor's StatusExchange state:
// answer the status request from cache (fetching on a miss), echo the ping
// payload back unchanged, then let the caller close the connection.
func runStatusExchange(ctx context.Context, sess *session.Session, rt *session.Route, hs *packets.Handshake, deps *Deps) error {
	sess.SetState(session.StateStatus)
	pr := netio.NewPacketReader(sess.ClientConn)
	pw := netio.NewPacketWriter(sess.ClientConn)

	req := policy.Request{RemoteIP: remoteIP(sess)}
	verdict, err := deps.Policy.Evaluate(ctx, req)
	if err != nil {
		return err
	}
	if verdict.Denied {
		return closeQuietly(sess)
	}

	if _, err := readPacketCtx(ctx, pr); err != nil { // ServerBoundRequest, no fields
		return fmt.Errorf("%w: %v", gwerr.ErrIncomplete, err)
	}

	fp := statuscache.Fingerprint{RouteID: rt.BackendAddr, ProtocolVersion: int32(hs.ProtocolVersion)}
	payload, err := deps.Status.GetOrFetch(fp, func() ([]byte, error) {
		if deps.FetchStatus == nil {
			return nil, fmt.Errorf("%w: no status fetcher configured", gwerr.ErrBackendUnreachable)
		}
		return deps.FetchStatus(ctx, rt, int32(hs.ProtocolVersion))
	})
	if err != nil {
		if deps.Telemetry != nil {
			deps.Telemetry.Export(ctx, telemetry.Event{Kind: telemetry.EventBackendUnreachable, Route: rt.HostnamePattern, RemoteIP: remoteIP(sess), Err: err})
		}
		fallback := unreachableMOTD(rt, deps)
		if fallback == nil {
			return fmt.Errorf("%w: %v", gwerr.ErrBackendUnreachable, err)
		}
		payload = fallback
	}

	resp, err := packets.Encode(&packets.StatusResponse{JSON: values.String(payload)})
	if err != nil {
		return err
	}
	if err := pw.WritePacket(resp); err != nil {
		return err
	}

	raw, err := readPacketCtx(ctx, pr)
	if err != nil {
		return nil // client disconnected right after status, not an error
	}
	ping, err := packets.Decode[packets.PingRequest](raw)
	if err != nil {
		return fmt.Errorf("%w: %v", gwerr.ErrUnexpectedPacket, err)
	}
	pong, err := packets.Encode(&packets.PongResponse{Payload: ping.Payload})
	if err != nil {
		return err
	}
	return pw.WritePacket(pong)
}

func remoteIP(sess *session.Session) string {
	addr := sess.ClientConn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func closeQuietly(sess *session.Session) error {
	sess.SetState(session.StateClosing)
	return sess.ClientConn.Close()
}

// unreachableMOTD produces a status payload to serve instead of erroring
// out when FetchStatus fails: the route's own configured MOTD override
// takes precedence (it's already a pre-rendered, operator-chosen payload),
// falling back to the shared builder's StateUnreachable default. Returns
// nil if neither is configured, in which case the caller still disconnects
// with an error — unchanged behavior for deployments that haven't wired a
// motd.Builder.
func unreachableMOTD(rt *session.Route, deps *Deps) []byte {
	if rt.MOTDOverride != nil {
		return rt.MOTDOverride
	}
	if deps.MOTDBuilder == nil {
		return nil
	}
	payload, err := deps.MOTDBuilder.Build(motd.StateUnreachable, nil, 0, 0, rt.HostnamePattern)
	if err != nil {
		return nil
	}
	return payload
}
