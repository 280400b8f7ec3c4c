package actor

import (
	"context"
	"fmt"

	"github.com/go-mclib/gateway/internal/gwerr"
	"github.com/go-mclib/gateway/internal/netio"
	"github.com/go-mclib/gateway/internal/packet"
	"github.com/go-mclib/gateway/internal/packets"
)

// readHandshake performs the client actor's ReadingHandshake state: read
// exactly one packet, expect id=0x00, decode it.
func readHandshake(ctx context.Context, r *netio.PacketReader) (*packets.Handshake, error) {
	raw, err := readPacketCtx(ctx, r)
	if err != nil {
		return nil, err
	}
	hs, err := packets.Decode[packets.Handshake](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gwerr.ErrMalformed, err)
	}
	return hs, nil
}

// readPacketCtx runs a blocking ReadPacket on its own goroutine so a caller
// can stop waiting once ctx expires. The read itself can't be interrupted
// mid-syscall, but abandoning it and closing the transport (which the
// caller does on timeout) unblocks it; the orphaned goroutine then exits on
// its own once the read errors.
func readPacketCtx(ctx context.Context, r *netio.PacketReader) (packet.Packet, error) {
	type outcome struct {
		pkt packet.Packet
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		pkt, err := r.ReadPacket()
		ch <- outcome{pkt, err}
	}()

	select {
	case o := <-ch:
		return o.pkt, o.err
	case <-ctx.Done():
		return packet.Packet{}, fmt.Errorf("%w: %v", gwerr.ErrTimedOut, ctx.Err())
	}
}
