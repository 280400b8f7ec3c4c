package packet_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-mclib/gateway/internal/gwerr"
	"github.com/go-mclib/gateway/internal/packet"
	"github.com/go-mclib/gateway/internal/values"
)

func TestRoundTripUncompressed(t *testing.T) {
	p, err := packet.New(0x00, []byte("hello world"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := p.WriteTo(&buf, packet.NoCompression); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := packet.ReadFrom(&buf, packet.NoCompression)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if got.ID != p.ID || !bytes.Equal(got.Data, p.Data) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestCompressionBelowThreshold(t *testing.T) {
	// 254 data bytes plus the 1-byte packet id make a 255-byte body, one
	// below the threshold.
	p, err := packet.New(0x01, bytes.Repeat([]byte{0xAB}, 254))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := p.WriteTo(&buf, 256); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	// data_length must be encoded as VarInt(0) right after the frame length.
	if _, err := values.DecodeVarInt(&buf); err != nil {
		t.Fatalf("decode frame length: %v", err)
	}
	dataLength, err := values.DecodeVarInt(&buf)
	if err != nil {
		t.Fatalf("decode data length: %v", err)
	}
	if dataLength != 0 {
		t.Fatalf("expected data_length=0 below threshold, got %d", dataLength)
	}
}

func TestCompressionAtOrAboveThreshold(t *testing.T) {
	p, err := packet.New(0x01, bytes.Repeat([]byte{0xAB}, 256))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := p.WriteTo(&buf, 256); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := packet.ReadFrom(&buf, 256)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if got.ID != p.ID || !bytes.Equal(got.Data, p.Data) {
		t.Fatalf("round trip mismatch after compression")
	}
}

func TestOversizeFrameRejectedWithoutReadingBody(t *testing.T) {
	var buf bytes.Buffer
	if err := values.VarInt(packet.MaxFrameLength + 1).Encode(&buf); err != nil {
		t.Fatalf("encode length: %v", err)
	}
	// Deliberately do not write any body bytes: rejection must happen before
	// the reader tries to consume (and therefore allocate for) the declared length.

	_, err := packet.ReadFrom(&buf, packet.NoCompression)
	if !errors.Is(err, gwerr.ErrOversize) {
		t.Fatalf("expected ErrOversize, got %v", err)
	}
}

func TestIncompleteFrameReported(t *testing.T) {
	r := strings.NewReader(string([]byte{0x05, 0x00, 0x01}))
	_, err := packet.ReadFrom(r, packet.NoCompression)
	if !errors.Is(err, gwerr.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}
