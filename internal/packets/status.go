package packets

import "github.com/go-mclib/gateway/internal/values"

// StatusRequest is the serverbound "Status Request" (id=0x00). It has no
// fields and may only be sent once, immediately after the handshake.
type StatusRequest struct{}

func (StatusRequest) PacketID() values.VarInt                { return 0x00 }
func (StatusRequest) Encode(buf *values.PacketBuffer) error  { return nil }
func (*StatusRequest) Decode(buf *values.PacketBuffer) error { return nil }

// StatusResponse is the clientbound "Status Response" (id=0x00): a single
// JSON string describing version, players, description, and favicon.
type StatusResponse struct {
	JSON values.String
}

func (StatusResponse) PacketID() values.VarInt { return 0x00 }

func (r StatusResponse) Encode(buf *values.PacketBuffer) error {
	return buf.WriteString(r.JSON)
}

func (r *StatusResponse) Decode(buf *values.PacketBuffer) error {
	var err error
	r.JSON, err = buf.ReadString(0)
	return err
}

// PingRequest is the serverbound "Ping Request (status)" (id=0x01).
// Payload is an opaque timestamp the client expects echoed back unchanged.
type PingRequest struct {
	Payload values.Int64
}

func (PingRequest) PacketID() values.VarInt { return 0x01 }

func (p PingRequest) Encode(buf *values.PacketBuffer) error {
	return buf.WriteInt64(p.Payload)
}

func (p *PingRequest) Decode(buf *values.PacketBuffer) error {
	var err error
	p.Payload, err = buf.ReadInt64()
	return err
}

// PongResponse is the clientbound "Pong Response (status)" (id=0x01).
type PongResponse struct {
	Payload values.Int64
}

func (PongResponse) PacketID() values.VarInt { return 0x01 }

func (p PongResponse) Encode(buf *values.PacketBuffer) error {
	return buf.WriteInt64(p.Payload)
}

func (p *PongResponse) Decode(buf *values.PacketBuffer) error {
	var err error
	p.Payload, err = buf.ReadInt64()
	return err
}
