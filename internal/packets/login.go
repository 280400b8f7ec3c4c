package packets

import "github.com/go-mclib/gateway/internal/values"

// LoginStart is the serverbound "Login Start" (id=0x00): the username the
// player chose, plus a UUID vanilla clients always send but the server is
// free to ignore (offline-mode synthesizes its own from the username).
type LoginStart struct {
	Name       values.String
	PlayerUUID values.UUID
}

func (LoginStart) PacketID() values.VarInt { return 0x00 }

func (p LoginStart) Encode(buf *values.PacketBuffer) error {
	if err := buf.WriteString(p.Name); err != nil {
		return err
	}
	return buf.WriteUUID(p.PlayerUUID)
}

func (p *LoginStart) Decode(buf *values.PacketBuffer) error {
	var err error
	if p.Name, err = buf.ReadString(16); err != nil {
		return err
	}
	p.PlayerUUID, err = buf.ReadUUID()
	return err
}

// Disconnect is the clientbound "Disconnect (login)" (id=0x00): a JSON chat
// reason shown to the player before the connection closes. This is also the
// shape the policy chain uses to reject a connection during login.
type Disconnect struct {
	Reason values.JSONTextComponent
}

func (Disconnect) PacketID() values.VarInt { return 0x00 }

func (p Disconnect) Encode(buf *values.PacketBuffer) error {
	return buf.WriteJSONTextComponent(p.Reason)
}

func (p *Disconnect) Decode(buf *values.PacketBuffer) error {
	var err error
	p.Reason, err = buf.ReadJSONTextComponent(0)
	return err
}

// EncryptionRequest is the clientbound "Encryption Request" (id=0x01),
// beginning the online-mode authentication handshake.
type EncryptionRequest struct {
	ServerID    values.String
	PublicKey   values.ByteArray
	VerifyToken values.ByteArray
}

func (EncryptionRequest) PacketID() values.VarInt { return 0x01 }

func (p EncryptionRequest) Encode(buf *values.PacketBuffer) error {
	if err := buf.WriteString(p.ServerID); err != nil {
		return err
	}
	if err := buf.WriteByteArray(p.PublicKey); err != nil {
		return err
	}
	return buf.WriteByteArray(p.VerifyToken)
}

func (p *EncryptionRequest) Decode(buf *values.PacketBuffer) error {
	var err error
	if p.ServerID, err = buf.ReadString(20); err != nil {
		return err
	}
	if p.PublicKey, err = buf.ReadByteArray(0); err != nil {
		return err
	}
	p.VerifyToken, err = buf.ReadByteArray(0)
	return err
}

// EncryptionResponse is the serverbound "Encryption Response" (id=0x01): the
// shared secret and verify token, both RSA-encrypted with the server's
// public key from EncryptionRequest.
type EncryptionResponse struct {
	SharedSecret values.ByteArray
	VerifyToken  values.ByteArray
}

func (EncryptionResponse) PacketID() values.VarInt { return 0x01 }

func (p EncryptionResponse) Encode(buf *values.PacketBuffer) error {
	if err := buf.WriteByteArray(p.SharedSecret); err != nil {
		return err
	}
	return buf.WriteByteArray(p.VerifyToken)
}

func (p *EncryptionResponse) Decode(buf *values.PacketBuffer) error {
	var err error
	if p.SharedSecret, err = buf.ReadByteArray(0); err != nil {
		return err
	}
	p.VerifyToken, err = buf.ReadByteArray(0)
	return err
}

// LoginSuccess is the clientbound "Login Success" (id=0x02), finalizing the
// player's identity before the client acknowledges into configuration.
type LoginSuccess struct {
	UUID     values.UUID
	Username values.String
}

func (LoginSuccess) PacketID() values.VarInt { return 0x02 }

func (p LoginSuccess) Encode(buf *values.PacketBuffer) error {
	if err := buf.WriteUUID(p.UUID); err != nil {
		return err
	}
	return buf.WriteString(p.Username)
}

func (p *LoginSuccess) Decode(buf *values.PacketBuffer) error {
	var err error
	if p.UUID, err = buf.ReadUUID(); err != nil {
		return err
	}
	p.Username, err = buf.ReadString(16)
	return err
}

// SetCompression is the clientbound "Set Compression" (id=0x03). Receiving
// it turns compression on, one-way, for both directions of the connection
// at the given threshold.
type SetCompression struct {
	Threshold values.VarInt
}

func (SetCompression) PacketID() values.VarInt { return 0x03 }

func (p SetCompression) Encode(buf *values.PacketBuffer) error {
	return buf.WriteVarInt(p.Threshold)
}

func (p *SetCompression) Decode(buf *values.PacketBuffer) error {
	var err error
	p.Threshold, err = buf.ReadVarInt()
	return err
}

// PluginRequest is the clientbound "Login Plugin Request" (id=0x04), used by
// modded servers to query the client during login.
type PluginRequest struct {
	MessageID values.VarInt
	Channel   values.Identifier
	Data      values.ByteArray
}

func (PluginRequest) PacketID() values.VarInt { return 0x04 }

func (p PluginRequest) Encode(buf *values.PacketBuffer) error {
	if err := buf.WriteVarInt(p.MessageID); err != nil {
		return err
	}
	if err := buf.WriteIdentifier(p.Channel); err != nil {
		return err
	}
	return buf.WriteFixedByteArray(p.Data)
}

func (p *PluginRequest) Decode(buf *values.PacketBuffer) error {
	var err error
	if p.MessageID, err = buf.ReadVarInt(); err != nil {
		return err
	}
	if p.Channel, err = buf.ReadIdentifier(); err != nil {
		return err
	}
	// Remaining bytes belong to the channel-specific payload; the frame's
	// own length prefix (stripped before Decode runs) bounds this read.
	p.Data, err = buf.ReadAllRemaining()
	return err
}

// PluginResponse is the serverbound "Login Plugin Response" (id=0x02).
type PluginResponse struct {
	MessageID values.VarInt
	Data      values.PrefixedOptional[values.ByteArray]
}

func (PluginResponse) PacketID() values.VarInt { return 0x02 }

func (p PluginResponse) Encode(buf *values.PacketBuffer) error {
	if err := buf.WriteVarInt(p.MessageID); err != nil {
		return err
	}
	return p.Data.Encode(buf.Writer())
}

func (p *PluginResponse) Decode(buf *values.PacketBuffer) error {
	var err error
	if p.MessageID, err = buf.ReadVarInt(); err != nil {
		return err
	}
	present, err := buf.ReadBool()
	if err != nil {
		return err
	}
	if !present {
		p.Data = values.PrefixedOptional[values.ByteArray]{}
		return nil
	}
	// Only present when the client understood the request; the remaining
	// frame bytes are the channel-specific response with no length prefix.
	data, err := buf.ReadAllRemaining()
	if err != nil {
		return err
	}
	p.Data = values.PrefixedOptional[values.ByteArray]{Present: true, Value: data}
	return nil
}

// CookieRequest is the clientbound "Cookie Request (login)" (id=0x05).
type CookieRequest struct {
	Key values.Identifier
}

func (CookieRequest) PacketID() values.VarInt { return 0x05 }

func (p CookieRequest) Encode(buf *values.PacketBuffer) error {
	return buf.WriteIdentifier(p.Key)
}

func (p *CookieRequest) Decode(buf *values.PacketBuffer) error {
	var err error
	p.Key, err = buf.ReadIdentifier()
	return err
}

// CookieResponse is the serverbound "Cookie Response (login)" (id=0x04). The
// vanilla server accepts at most 5 KiB of payload.
type CookieResponse struct {
	Key     values.Identifier
	Payload values.PrefixedOptional[values.ByteArray]
}

func (CookieResponse) PacketID() values.VarInt { return 0x04 }

func (p CookieResponse) Encode(buf *values.PacketBuffer) error {
	if err := buf.WriteIdentifier(p.Key); err != nil {
		return err
	}
	if err := buf.WriteBool(values.Boolean(p.Payload.Present)); err != nil {
		return err
	}
	if !p.Payload.Present {
		return nil
	}
	return buf.WriteByteArray(p.Payload.Value)
}

// MaxCookiePayloadLength is the vanilla server's cap on Cookie Response payloads.
const MaxCookiePayloadLength = 5 * 1024

func (p *CookieResponse) Decode(buf *values.PacketBuffer) error {
	var err error
	if p.Key, err = buf.ReadIdentifier(); err != nil {
		return err
	}
	present, err := buf.ReadBool()
	if err != nil {
		return err
	}
	if !present {
		p.Payload = values.PrefixedOptional[values.ByteArray]{}
		return nil
	}
	data, err := buf.ReadByteArray(MaxCookiePayloadLength)
	if err != nil {
		return err
	}
	p.Payload = values.PrefixedOptional[values.ByteArray]{Present: true, Value: data}
	return nil
}

// LoginAcknowledged is the serverbound "Login Acknowledged" (id=0x03). It has
// no fields; receiving it switches the connection into configuration state.
type LoginAcknowledged struct{}

func (LoginAcknowledged) PacketID() values.VarInt                { return 0x03 }
func (LoginAcknowledged) Encode(buf *values.PacketBuffer) error  { return nil }
func (*LoginAcknowledged) Decode(buf *values.PacketBuffer) error { return nil }
