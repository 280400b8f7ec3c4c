// Package packets defines the typed protocol packets the gateway itself
// must understand: handshake, status, and login. Everything past login
// (configuration, play) is forwarded as opaque frames — see internal/actor.
// The one play-state packet defined here, PlayDisconnect, is not sent by any
// gateway code path.
package packets

import (
	"fmt"

	"github.com/go-mclib/gateway/internal/packet"
	"github.com/go-mclib/gateway/internal/values"
)

// TypedPacket is implemented by every packet this package defines.
type TypedPacket interface {
	PacketID() values.VarInt
	Encode(buf *values.PacketBuffer) error
	Decode(buf *values.PacketBuffer) error
}

// Encode serializes a typed packet into a framing-ready packet.Packet.
func Encode(p TypedPacket) (packet.Packet, error) {
	buf := values.NewWriter()
	if err := p.Encode(buf); err != nil {
		return packet.Packet{}, fmt.Errorf("failed to encode packet 0x%02X: %w", p.PacketID(), err)
	}
	return packet.New(p.PacketID(), buf.Bytes())
}

// Decode decodes raw into a zero-valued T, verifying the packet ID matches.
//
// Example:
//
//	hs, err := packets.Decode[packets.Handshake](raw)
func Decode[T any, PT interface {
	*T
	TypedPacket
}](raw packet.Packet) (PT, error) {
	p := new(T)
	pt := PT(p)
	if raw.ID != pt.PacketID() {
		return nil, fmt.Errorf("packet ID mismatch: expected 0x%02X, got 0x%02X", pt.PacketID(), raw.ID)
	}
	if err := pt.Decode(values.NewReader(raw.Data)); err != nil {
		return nil, fmt.Errorf("failed to decode packet 0x%02X: %w", raw.ID, err)
	}
	return pt, nil
}
