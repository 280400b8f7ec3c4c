// Package packet implements the Minecraft Java Edition packet framing codec:
// the length-prefixed envelope, transparent zlib compression above a
// threshold, and the size invariants the wire format imposes.
//
// Encryption is not handled here — it wraps the byte stream underneath this
// codec (see internal/netio), so this package never sees a shared secret.
//
// See https://minecraft.wiki/w/Java_Edition_protocol/Packets
package packet

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/go-mclib/gateway/internal/gwerr"
	"github.com/go-mclib/gateway/internal/values"
)

const (
	// MaxFrameLength is the largest value a frame's VarInt length prefix may
	// encode: (2^21)-1, the maximum representable in a 3-byte VarInt.
	MaxFrameLength = (1 << 21) - 1
	// MaxUncompressedLength bounds the decompressed size of a packet body.
	MaxUncompressedLength = 1 << 23
	// MaxDataLength bounds the packet's opaque payload buffer.
	MaxDataLength = 2 * 1024 * 1024
)

// NoCompression disables compression for Read/Write.
const NoCompression = -1

// Packet is the unit of protocol exchange once framing has been stripped:
// an integer ID and an opaque, decompressed payload.
type Packet struct {
	ID   values.VarInt
	Data values.ByteArray
}

// New builds a Packet, rejecting payloads that exceed MaxDataLength.
func New(id values.VarInt, data []byte) (Packet, error) {
	if len(data) > MaxDataLength {
		return Packet{}, fmt.Errorf("%w: packet data length %d exceeds %d bytes", gwerr.ErrOversize, len(data), MaxDataLength)
	}
	return Packet{ID: id, Data: data}, nil
}

// ReadFrom reads one framed Packet from r.
//
// compressionThreshold < 0 disables compression framing; compressionThreshold
// >= 0 expects every frame to carry a data_length field, with 0 meaning the
// body is uncompressed.
//
// The declared frame length is validated against MaxFrameLength before any
// allocation proportional to it, so a peer cannot force large allocations by
// declaring an oversize length it never backs with bytes.
func ReadFrom(r io.Reader, compressionThreshold int) (Packet, error) {
	length, err := values.DecodeVarInt(r)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Packet{}, fmt.Errorf("%w: %v", gwerr.ErrIncomplete, err)
		}
		return Packet{}, fmt.Errorf("failed to read frame length: %w", err)
	}
	if length < 0 || int(length) > MaxFrameLength {
		return Packet{}, fmt.Errorf("%w: declared frame length %d", gwerr.ErrOversize, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return Packet{}, fmt.Errorf("%w: %v", gwerr.ErrIncomplete, err)
	}

	reader := bytes.NewReader(body)
	if compressionThreshold >= 0 {
		return readCompressed(reader)
	}
	return readUncompressed(reader)
}

func readUncompressed(r *bytes.Reader) (Packet, error) {
	id, err := values.DecodeVarInt(r)
	if err != nil {
		return Packet{}, fmt.Errorf("%w: failed to read packet id: %v", gwerr.ErrMalformed, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Packet{}, fmt.Errorf("%w: failed to read packet body: %v", gwerr.ErrMalformed, err)
	}
	return New(id, data)
}

func readCompressed(r *bytes.Reader) (Packet, error) {
	dataLength, err := values.DecodeVarInt(r)
	if err != nil {
		return Packet{}, fmt.Errorf("%w: failed to read data length: %v", gwerr.ErrMalformed, err)
	}

	// data_length == 0 means the body travelled uncompressed despite
	// compression being enabled for the direction (below threshold).
	if dataLength == 0 {
		return readUncompressed(r)
	}
	if int(dataLength) > MaxUncompressedLength {
		return Packet{}, fmt.Errorf("%w: uncompressed length %d exceeds %d bytes", gwerr.ErrOversize, dataLength, MaxUncompressedLength)
	}

	compressed, err := io.ReadAll(r)
	if err != nil {
		return Packet{}, fmt.Errorf("%w: failed to read compressed body: %v", gwerr.ErrMalformed, err)
	}

	uncompressed, err := inflate(compressed, int(dataLength))
	if err != nil {
		return Packet{}, fmt.Errorf("%w: %v", gwerr.ErrDecompress, err)
	}

	uncompressedReader := bytes.NewReader(uncompressed)
	id, err := values.DecodeVarInt(uncompressedReader)
	if err != nil {
		return Packet{}, fmt.Errorf("%w: failed to read packet id: %v", gwerr.ErrMalformed, err)
	}
	data, err := io.ReadAll(uncompressedReader)
	if err != nil {
		return Packet{}, fmt.Errorf("%w: failed to read packet body: %v", gwerr.ErrMalformed, err)
	}
	return New(id, data)
}

// WriteTo frames p and writes it to w.
//
// With compression enabled, payloads at or above threshold are zlib
// compressed; payloads below threshold travel with data_length = 0, matching
// vanilla's rejection of needlessly-compressed small packets.
func (p Packet) WriteTo(w io.Writer, compressionThreshold int) error {
	var frame []byte
	var err error
	if compressionThreshold >= 0 {
		frame, err = p.frameCompressed(compressionThreshold)
	} else {
		frame, err = p.frameUncompressed()
	}
	if err != nil {
		return fmt.Errorf("failed to frame packet: %w", err)
	}
	if len(frame) > MaxFrameLength+values.VarInt(MaxFrameLength).Len() {
		return fmt.Errorf("%w: encoded frame length %d", gwerr.ErrOversize, len(frame))
	}
	_, err = w.Write(frame)
	return err
}

func (p Packet) payload() ([]byte, error) {
	idBytes, err := p.ID.ToBytes()
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, idBytes...), p.Data...), nil
}

func (p Packet) frameUncompressed() ([]byte, error) {
	payload, err := p.payload()
	if err != nil {
		return nil, err
	}
	if len(payload) > MaxFrameLength {
		return nil, fmt.Errorf("%w: payload length %d", gwerr.ErrOversize, len(payload))
	}
	lengthBytes, err := values.VarInt(len(payload)).ToBytes()
	if err != nil {
		return nil, err
	}
	return append(lengthBytes, payload...), nil
}

func (p Packet) frameCompressed(threshold int) ([]byte, error) {
	payload, err := p.payload()
	if err != nil {
		return nil, err
	}

	if len(payload) < threshold {
		dataLengthBytes, err := values.VarInt(0).ToBytes()
		if err != nil {
			return nil, err
		}
		body := append(dataLengthBytes, payload...)
		lengthBytes, err := values.VarInt(len(body)).ToBytes()
		if err != nil {
			return nil, err
		}
		return append(lengthBytes, body...), nil
	}

	compressed := deflate(payload)
	dataLengthBytes, err := values.VarInt(len(payload)).ToBytes()
	if err != nil {
		return nil, err
	}
	body := append(dataLengthBytes, compressed...)
	if len(body) > MaxFrameLength {
		return nil, fmt.Errorf("%w: compressed frame body length %d", gwerr.ErrOversize, len(body))
	}
	lengthBytes, err := values.VarInt(len(body)).ToBytes()
	if err != nil {
		return nil, err
	}
	return append(lengthBytes, body...), nil
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

func inflate(data []byte, expectedLength int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()

	limited := io.LimitReader(zr, int64(expectedLength)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(out) != expectedLength {
		return nil, fmt.Errorf("decompressed length %d does not match declared %d", len(out), expectedLength)
	}
	return out, nil
}
