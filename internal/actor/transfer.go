package actor

import (
	"context"
	"errors"
	"io"

	"github.com/go-mclib/gateway/internal/netio"
)

// spliceRaw implements the Transferring state for Passthrough-shaped modes:
// every byte read from one side is written to the other, with no packet
// decoding at all, until either side errors or ctx is cancelled. This is
// correct only when both sides negotiated framing/compression/encryption
// identically — which Passthrough guarantees since the client and backend
// completed that negotiation directly with each other.
func spliceRaw(ctx context.Context, client, backend io.ReadWriteCloser) error {
	errc := make(chan error, 2)
	go func() { _, err := io.Copy(backend, client); errc <- err }()
	go func() { _, err := io.Copy(client, backend); errc <- err }()

	select {
	case err := <-errc:
		client.Close()
		backend.Close()
		return ignoreCloseErrors(err)
	case <-ctx.Done():
		client.Close()
		backend.Close()
		return ctx.Err()
	}
}

// splicePackets implements Transferring for modes where the gateway
// terminated login independently on each side (Offline, ClientOnly): rather
// than copying raw bytes, it decodes one frame at a time and re-encodes it
// for the other side's PacketWriter, so differing compression thresholds on
// each leg are bridged transparently. Packet contents (Data) are forwarded
// opaquely — configuration and play state are never interpreted.
func splicePackets(ctx context.Context, clientReader *netio.PacketReader, clientWriter *netio.PacketWriter, backendReader *netio.PacketReader, backendWriter *netio.PacketWriter) error {
	errc := make(chan error, 2)
	go func() { errc <- relay(ctx, clientReader, backendWriter) }()
	go func() { errc <- relay(ctx, backendReader, clientWriter) }()

	select {
	case err := <-errc:
		return ignoreCloseErrors(err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func relay(ctx context.Context, from *netio.PacketReader, to *netio.PacketWriter) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		pkt, err := from.ReadPacket()
		if err != nil {
			return err
		}
		if err := to.WritePacket(pkt); err != nil {
			return err
		}
	}
}

// ignoreCloseErrors treats a peer simply hanging up as a normal end of the
// Transferring state rather than a failure worth propagating.
func ignoreCloseErrors(err error) error {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}
