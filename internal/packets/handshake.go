package packets

import "github.com/go-mclib/gateway/internal/values"

// Handshake intent values for Handshake.NextState.
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Handshake
const (
	IntentStatus   values.VarInt = 1
	IntentLogin    values.VarInt = 2
	IntentTransfer values.VarInt = 3
)

// Handshake is the first serverbound packet (id=0x00), sent once right after
// the TCP connection opens. ServerAddress carries the SNI-style hostname the
// route resolver matches against.
//
// Legacy Server List Ping is not handled — it predates this framing entirely
// and no longer reaches current clients.
type Handshake struct {
	ProtocolVersion values.VarInt
	ServerAddress   values.String
	ServerPort      values.Uint16
	NextState       values.VarInt
}

func (Handshake) PacketID() values.VarInt { return 0x00 }

func (h Handshake) Encode(buf *values.PacketBuffer) error {
	if err := buf.WriteVarInt(h.ProtocolVersion); err != nil {
		return err
	}
	if err := buf.WriteString(h.ServerAddress); err != nil {
		return err
	}
	if err := buf.WriteUint16(h.ServerPort); err != nil {
		return err
	}
	return buf.WriteVarInt(h.NextState)
}

func (h *Handshake) Decode(buf *values.PacketBuffer) error {
	var err error
	if h.ProtocolVersion, err = buf.ReadVarInt(); err != nil {
		return err
	}
	// Server addresses may carry a Forge/FML marker suffix; keep generous headroom.
	if h.ServerAddress, err = buf.ReadString(255); err != nil {
		return err
	}
	if h.ServerPort, err = buf.ReadUint16(); err != nil {
		return err
	}
	if h.NextState, err = buf.ReadVarInt(); err != nil {
		return err
	}
	return nil
}
