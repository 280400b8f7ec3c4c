package actor

import (
	"context"
	"fmt"

	"github.com/go-mclib/gateway/internal/gwerr"
	"github.com/go-mclib/gateway/internal/netio"
	"github.com/go-mclib/gateway/internal/packets"
	"github.com/go-mclib/gateway/internal/session"
	"github.com/go-mclib/gateway/internal/values"
)

// FetchStatus implements the server actor's StatusFetching state (spec
// §4.7): dial rt's backend, send a Handshake (next_state=Status) followed
// by an empty StatusRequest, and return the resulting StatusResponse's raw
// JSON payload. This is the production Deps.FetchStatus/
// statuscache.FetchFunc the supervisor wires in on a cache miss; dial lets
// tests substitute an in-memory pipe instead of a real backend — passing
// nil uses netio.DialBackend.
func FetchStatus(ctx context.Context, dial func(ctx context.Context, rt *session.Route) (*netio.Conn, error), rt *session.Route, protocolVersion int32) ([]byte, error) {
	if dial == nil {
		dial = func(ctx context.Context, rt *session.Route) (*netio.Conn, error) {
			return netio.DialBackend(ctx, rt.BackendAddr)
		}
	}
	backend, err := dial(ctx, rt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gwerr.ErrBackendUnreachable, err)
	}
	defer backend.Close()

	pw := netio.NewPacketWriter(backend)
	pr := netio.NewPacketReader(backend)

	hs := &packets.Handshake{
		ProtocolVersion: values.VarInt(protocolVersion),
		ServerAddress:   values.String(rt.HostnamePattern),
		ServerPort:      0,
		NextState:       packets.IntentStatus,
	}
	hsPkt, err := packets.Encode(hs)
	if err != nil {
		return nil, err
	}
	if err := pw.WritePacket(hsPkt); err != nil {
		return nil, fmt.Errorf("%w: %v", gwerr.ErrBackendUnreachable, err)
	}

	reqPkt, err := packets.Encode(&packets.StatusRequest{})
	if err != nil {
		return nil, err
	}
	if err := pw.WritePacket(reqPkt); err != nil {
		return nil, fmt.Errorf("%w: %v", gwerr.ErrBackendUnreachable, err)
	}

	raw, err := readPacketCtx(ctx, pr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gwerr.ErrBackendUnreachable, err)
	}
	resp, err := packets.Decode[packets.StatusResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gwerr.ErrMalformed, err)
	}
	return []byte(resp.JSON), nil
}
