package netio

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/go-mclib/gateway/internal/packet"
)

// PacketReader owns one transport half and decodes framed packets from it.
//
// The teacher's async runtime needed an explicit accumulation buffer so a
// partial frame could survive a task suspension; Go's net.Conn read calls
// block synchronously until they are satisfied or the connection errors, so
// bufio.Reader's internal buffering gives the same "partial frames survive
// suspension" property for free — ReadPacket blocks the calling goroutine
// instead of yielding, and a short read is retried by io.ReadFull underneath
// packet.ReadFrom rather than by hand-rolled resumption here.
type PacketReader struct {
	mu                   sync.Mutex
	r                    *bufio.Reader
	compressionThreshold int
}

// NewPacketReader wraps r for packet decoding. Compression starts disabled.
func NewPacketReader(r io.Reader) *PacketReader {
	return &PacketReader{
		r:                    bufio.NewReaderSize(r, 4096),
		compressionThreshold: packet.NoCompression,
	}
}

// SetCompressionThreshold enables compression framing for subsequent reads.
// The transition is one-way for the connection's lifetime in practice (the
// protocol never turns compression back off), but nothing here prevents a
// caller from doing so.
func (pr *PacketReader) SetCompressionThreshold(threshold int) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.compressionThreshold = threshold
}

// ReadPacket blocks until exactly one Packet has been decoded, or returns an
// error (Incomplete, Oversize, Malformed, DecompressError per internal/gwerr).
func (pr *PacketReader) ReadPacket() (packet.Packet, error) {
	pr.mu.Lock()
	threshold := pr.compressionThreshold
	pr.mu.Unlock()
	return packet.ReadFrom(pr.r, threshold)
}

// PacketWriter owns one transport half and encodes framed packets onto it.
type PacketWriter struct {
	mu                   sync.Mutex
	w                    io.Writer
	compressionThreshold int
}

// NewPacketWriter wraps w for packet encoding. Compression starts disabled.
func NewPacketWriter(w io.Writer) *PacketWriter {
	return &PacketWriter{
		w:                    w,
		compressionThreshold: packet.NoCompression,
	}
}

// SetCompressionThreshold enables compression framing for subsequent writes.
func (pw *PacketWriter) SetCompressionThreshold(threshold int) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.compressionThreshold = threshold
}

// WritePacket encodes p and writes it to the transport atomically: the frame
// is fully built in memory first, so either the complete encoded bytes reach
// the underlying Write call or none do. A write error poisons the stream —
// callers must not retry on the same PacketWriter after an error.
func (pw *PacketWriter) WritePacket(p packet.Packet) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if err := p.WriteTo(pw.w, pw.compressionThreshold); err != nil {
		return fmt.Errorf("failed to write packet 0x%02X: %w", p.ID, err)
	}
	return nil
}
