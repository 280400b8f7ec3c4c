package packets

import "github.com/go-mclib/gateway/internal/values"

// PlayDisconnect is the clientbound "Disconnect" packet in the play state
// (id=0x17). Everything else in play state is forwarded as an opaque frame
// by the actors (see internal/actor). The gateway does not send this packet
// itself: policy-rejection and backend-unreachable reasons go out during
// login as Disconnect.
type PlayDisconnect struct {
	Reason values.JSONTextComponent
}

func (PlayDisconnect) PacketID() values.VarInt { return 0x17 }

func (p PlayDisconnect) Encode(buf *values.PacketBuffer) error {
	return buf.WriteJSONTextComponent(p.Reason)
}

func (p *PlayDisconnect) Decode(buf *values.PacketBuffer) error {
	var err error
	p.Reason, err = buf.ReadJSONTextComponent(0)
	return err
}
