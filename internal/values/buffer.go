package values

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
)

// PacketBuffer provides methods for reading and writing Minecraft protocol data types.
// It wraps io.Reader and io.Writer interfaces for streaming network communication.
type PacketBuffer struct {
	reader io.Reader
	writer io.Writer

	// For writer mode, we also keep a bytes.Buffer to retrieve written bytes
	buf *bytes.Buffer
}

// NewReader creates a PacketBuffer for reading from data.
func NewReader(data []byte) *PacketBuffer {
	return &PacketBuffer{
		reader: bytes.NewReader(data),
	}
}

// NewReaderFrom creates a PacketBuffer for reading from an io.Reader.
func NewReaderFrom(r io.Reader) *PacketBuffer {
	return &PacketBuffer{
		reader: r,
	}
}

// NewWriter creates a PacketBuffer for writing data.
func NewWriter() *PacketBuffer {
	buf := &bytes.Buffer{}
	return &PacketBuffer{
		writer: buf,
		buf:    buf,
	}
}

// NewWriterTo creates a PacketBuffer that writes directly to an io.Writer.
func NewWriterTo(w io.Writer) *PacketBuffer {
	return &PacketBuffer{
		writer: w,
	}
}

// Bytes returns the written bytes. Only valid for buffers created with NewWriter.
func (pb *PacketBuffer) Bytes() []byte {
	if pb.buf != nil {
		return pb.buf.Bytes()
	}
	return nil
}

// Len returns the number of written bytes. Only valid for buffers created with NewWriter.
func (pb *PacketBuffer) Len() int {
	if pb.buf != nil {
		return pb.buf.Len()
	}
	return 0
}

// Reset resets the buffer for reuse. Only valid for buffers created with NewWriter.
func (pb *PacketBuffer) Reset() {
	if pb.buf != nil {
		pb.buf.Reset()
	}
}

// --- Raw I/O ---

// Read reads exactly len(p) bytes from the buffer.
func (pb *PacketBuffer) Read(p []byte) (int, error) {
	if pb.reader == nil {
		return 0, fmt.Errorf("buffer not in read mode")
	}
	return io.ReadFull(pb.reader, p)
}

// Write writes p to the buffer.
func (pb *PacketBuffer) Write(p []byte) (int, error) {
	if pb.writer == nil {
		return 0, fmt.Errorf("buffer not in write mode")
	}
	return pb.writer.Write(p)
}

// ReadByte reads a single byte.
func (pb *PacketBuffer) ReadByte() (byte, error) {
	var b [1]byte
	_, err := pb.Read(b[:])
	return b[0], err
}

// WriteByte writes a single byte.
func (pb *PacketBuffer) WriteByte(b byte) error {
	_, err := pb.Write([]byte{b})
	return err
}

// Reader returns the underlying io.Reader.
func (pb *PacketBuffer) Reader() io.Reader {
	return pb.reader
}

// Writer returns the underlying io.Writer.
func (pb *PacketBuffer) Writer() io.Writer {
	return pb.writer
}

// ============================================================================
// VarInt / VarLong
//
// These stay as free functions operating on io.Reader/io.Writer, not purely
// PacketBuffer methods, because internal/packet's frame layer has to decode
// a VarInt length prefix directly off the raw net.Conn before a PacketBuffer
// even exists — framing happens one layer below where a packet's body gets
// parsed. PacketBuffer's ReadVarInt/WriteVarInt below are thin wrappers so
// packet bodies use the identical encoding.
// ============================================================================

// VarInt is a variable-length signed 32-bit integer.
//
// Uses 7 bits per byte with bit 7 as continuation flag, little-endian byte
// order, maximum 5 bytes for 32-bit values. Mandated bit-for-bit by the
// wire protocol; there is no alternative encoding to adapt toward.
type VarInt int32

// Encode writes the VarInt to w.
func (v VarInt) Encode(w io.Writer) error {
	var buf [5]byte
	n := 0
	value := uint32(v)

	for {
		if (value & ^uint32(0x7F)) == 0 {
			buf[n] = byte(value)
			n++
			break
		}
		buf[n] = byte((value & 0x7F) | 0x80)
		n++
		value >>= 7
	}

	_, err := w.Write(buf[:n])
	return err
}

// ToBytes encodes the VarInt to bytes.
func (v VarInt) ToBytes() (ByteArray, error) {
	var buf [5]byte
	n := 0
	value := uint32(v)

	for {
		if (value & ^uint32(0x7F)) == 0 {
			buf[n] = byte(value)
			n++
			break
		}
		buf[n] = byte((value & 0x7F) | 0x80)
		n++
		value >>= 7
	}

	return buf[:n], nil
}

// Len returns the number of bytes needed to encode this VarInt.
func (v VarInt) Len() int {
	value := uint32(v)
	switch {
	case value < 1<<7:
		return 1
	case value < 1<<14:
		return 2
	case value < 1<<21:
		return 3
	case value < 1<<28:
		return 4
	default:
		return 5
	}
}

// DecodeVarInt reads a VarInt from r.
func DecodeVarInt(r io.Reader) (VarInt, error) {
	var value int32
	var position uint
	var b [1]byte

	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		value |= int32(b[0]&0x7F) << position

		if (b[0] & 0x80) == 0 {
			break
		}

		position += 7
		if position >= 35 {
			return 0, fmt.Errorf("VarInt is too big")
		}
	}

	return VarInt(value), nil
}

// VarLong is a variable-length signed 64-bit integer, same encoding as
// VarInt but for 64-bit values (maximum 10 bytes).
type VarLong int64

// Encode writes the VarLong to w.
func (v VarLong) Encode(w io.Writer) error {
	var buf [10]byte
	n := 0
	value := uint64(v)

	for {
		if (value & ^uint64(0x7F)) == 0 {
			buf[n] = byte(value)
			n++
			break
		}
		buf[n] = byte((value & 0x7F) | 0x80)
		n++
		value >>= 7
	}

	_, err := w.Write(buf[:n])
	return err
}

// ToBytes encodes the VarLong to bytes.
func (v VarLong) ToBytes() (ByteArray, error) {
	var buf [10]byte
	n := 0
	value := uint64(v)

	for {
		if (value & ^uint64(0x7F)) == 0 {
			buf[n] = byte(value)
			n++
			break
		}
		buf[n] = byte((value & 0x7F) | 0x80)
		n++
		value >>= 7
	}

	return buf[:n], nil
}

// Len returns the number of bytes needed to encode this VarLong.
func (v VarLong) Len() int {
	value := uint64(v)
	n := 1
	for value >= 0x80 {
		value >>= 7
		n++
	}
	return n
}

// DecodeVarLong reads a VarLong from r.
func DecodeVarLong(r io.Reader) (VarLong, error) {
	var value int64
	var position uint
	var b [1]byte

	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		value |= int64(b[0]&0x7F) << position

		if (b[0] & 0x80) == 0 {
			break
		}

		position += 7
		if position >= 70 {
			return 0, fmt.Errorf("VarLong is too big")
		}
	}

	return VarLong(value), nil
}

// ReadVarInt reads a variable-length 32-bit integer.
func (pb *PacketBuffer) ReadVarInt() (VarInt, error) {
	return DecodeVarInt(pb.reader)
}

// WriteVarInt writes a variable-length 32-bit integer.
func (pb *PacketBuffer) WriteVarInt(v VarInt) error {
	return v.Encode(pb.writer)
}

// ReadVarLong reads a variable-length 64-bit integer.
func (pb *PacketBuffer) ReadVarLong() (VarLong, error) {
	return DecodeVarLong(pb.reader)
}

// WriteVarLong writes a variable-length 64-bit integer.
func (pb *PacketBuffer) WriteVarLong(v VarLong) error {
	return v.Encode(pb.writer)
}

// ============================================================================
// Fixed-width primitives (big-endian, per the wire protocol)
// ============================================================================

// Boolean is a single byte (0x00 = false, 0x01 = true).
type Boolean bool

func (v Boolean) Encode(w io.Writer) error {
	var b byte
	if v {
		b = 0x01
	}
	_, err := w.Write([]byte{b})
	return err
}

func DecodeBoolean(r io.Reader) (Boolean, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// Int8 is a signed 8-bit integer.
type Int8 int8

func (v Int8) Encode(w io.Writer) error {
	_, err := w.Write([]byte{byte(v)})
	return err
}

func DecodeInt8(r io.Reader) (Int8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Int8(b[0]), nil
}

// Uint8 is an unsigned 8-bit integer.
type Uint8 uint8

func (v Uint8) Encode(w io.Writer) error {
	_, err := w.Write([]byte{byte(v)})
	return err
}

func DecodeUint8(r io.Reader) (Uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Uint8(b[0]), nil
}

// Int16 is a big-endian signed 16-bit integer.
type Int16 int16

func (v Int16) Encode(w io.Writer) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	_, err := w.Write(b[:])
	return err
}

func DecodeInt16(r io.Reader) (Int16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Int16(binary.BigEndian.Uint16(b[:])), nil
}

// Uint16 is a big-endian unsigned 16-bit integer.
type Uint16 uint16

func (v Uint16) Encode(w io.Writer) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	_, err := w.Write(b[:])
	return err
}

func DecodeUint16(r io.Reader) (Uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Uint16(binary.BigEndian.Uint16(b[:])), nil
}

// Int32 is a big-endian signed 32-bit integer.
type Int32 int32

func (v Int32) Encode(w io.Writer) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	_, err := w.Write(b[:])
	return err
}

func DecodeInt32(r io.Reader) (Int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Int32(binary.BigEndian.Uint32(b[:])), nil
}

// Int64 is a big-endian signed 64-bit integer.
type Int64 int64

func (v Int64) Encode(w io.Writer) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	_, err := w.Write(b[:])
	return err
}

func DecodeInt64(r io.Reader) (Int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Int64(binary.BigEndian.Uint64(b[:])), nil
}

// Float32 is a big-endian IEEE 754 single-precision float.
type Float32 float32

func (v Float32) Encode(w io.Writer) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(float32(v)))
	_, err := w.Write(b[:])
	return err
}

func DecodeFloat32(r io.Reader) (Float32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Float32(math.Float32frombits(binary.BigEndian.Uint32(b[:]))), nil
}

// Float64 is a big-endian IEEE 754 double-precision float.
type Float64 float64

func (v Float64) Encode(w io.Writer) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(float64(v)))
	_, err := w.Write(b[:])
	return err
}

func DecodeFloat64(r io.Reader) (Float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Float64(math.Float64frombits(binary.BigEndian.Uint64(b[:]))), nil
}

func (pb *PacketBuffer) ReadBool() (Boolean, error)  { return DecodeBoolean(pb.reader) }
func (pb *PacketBuffer) WriteBool(v Boolean) error   { return v.Encode(pb.writer) }
func (pb *PacketBuffer) ReadInt8() (Int8, error)     { return DecodeInt8(pb.reader) }
func (pb *PacketBuffer) WriteInt8(v Int8) error      { return v.Encode(pb.writer) }
func (pb *PacketBuffer) ReadUint8() (Uint8, error)   { return DecodeUint8(pb.reader) }
func (pb *PacketBuffer) WriteUint8(v Uint8) error    { return v.Encode(pb.writer) }
func (pb *PacketBuffer) ReadInt16() (Int16, error)   { return DecodeInt16(pb.reader) }
func (pb *PacketBuffer) WriteInt16(v Int16) error    { return v.Encode(pb.writer) }
func (pb *PacketBuffer) ReadUint16() (Uint16, error) { return DecodeUint16(pb.reader) }
func (pb *PacketBuffer) WriteUint16(v Uint16) error  { return v.Encode(pb.writer) }
func (pb *PacketBuffer) ReadInt32() (Int32, error)   { return DecodeInt32(pb.reader) }
func (pb *PacketBuffer) WriteInt32(v Int32) error    { return v.Encode(pb.writer) }
func (pb *PacketBuffer) ReadInt64() (Int64, error)   { return DecodeInt64(pb.reader) }
func (pb *PacketBuffer) WriteInt64(v Int64) error    { return v.Encode(pb.writer) }

func (pb *PacketBuffer) ReadFloat32() (Float32, error) { return DecodeFloat32(pb.reader) }
func (pb *PacketBuffer) WriteFloat32(v Float32) error  { return v.Encode(pb.writer) }
func (pb *PacketBuffer) ReadFloat64() (Float64, error) { return DecodeFloat64(pb.reader) }
func (pb *PacketBuffer) WriteFloat64(v Float64) error  { return v.Encode(pb.writer) }

// ============================================================================
// String / Identifier
// ============================================================================

// String is a UTF-8 encoded string with a VarInt length prefix (byte count).
// Maximum length is 32767 characters (which can be up to ~130KB in UTF-8).
type String string

func (v String) Encode(w io.Writer) error {
	data := []byte(v)
	if err := VarInt(len(data)).Encode(w); err != nil {
		return fmt.Errorf("failed to write string length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write string data: %w", err)
	}
	return nil
}

// DecodeString reads a String from r. maxLen is the maximum allowed string
// length in characters (0 = no limit).
func DecodeString(r io.Reader, maxLen int) (String, error) {
	length, err := DecodeVarInt(r)
	if err != nil {
		return "", fmt.Errorf("failed to read string length: %w", err)
	}
	if length < 0 {
		return "", fmt.Errorf("negative string length: %d", length)
	}

	// Minecraft strings can have at most 4 bytes per character (UTF-8).
	maxBytes := maxLen * 4
	if maxLen > 0 && int(length) > maxBytes {
		return "", fmt.Errorf("string byte length %d exceeds maximum %d", length, maxBytes)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", fmt.Errorf("failed to read string data: %w", err)
	}

	s := string(data)
	if maxLen > 0 && len([]rune(s)) > maxLen {
		return "", fmt.Errorf("string length %d exceeds maximum %d characters", len([]rune(s)), maxLen)
	}
	return String(s), nil
}

// Identifier is a namespaced location string ("namespace:path", defaulting
// to the "minecraft" namespace when no colon is present) — used by the
// gateway only for opaque pass-through fields (plugin channel names, cookie
// keys) that it forwards without interpreting.
type Identifier string

func (v Identifier) Encode(w io.Writer) error { return String(v).Encode(w) }

func DecodeIdentifier(r io.Reader) (Identifier, error) {
	s, err := DecodeString(r, 32767)
	if err != nil {
		return "", err
	}
	return Identifier(s), nil
}

// Namespace returns the namespace part of the identifier, defaulting to
// "minecraft" if none is specified.
func (id Identifier) Namespace() string {
	s := string(id)
	for i, c := range s {
		if c == ':' {
			return s[:i]
		}
	}
	return "minecraft"
}

// Path returns the path part of the identifier.
func (id Identifier) Path() string {
	s := string(id)
	for i, c := range s {
		if c == ':' {
			return s[i+1:]
		}
	}
	return s
}

func (pb *PacketBuffer) ReadString(maxLen int) (String, error) { return DecodeString(pb.reader, maxLen) }
func (pb *PacketBuffer) WriteString(v String) error             { return v.Encode(pb.writer) }
func (pb *PacketBuffer) ReadIdentifier() (Identifier, error)    { return DecodeIdentifier(pb.reader) }
func (pb *PacketBuffer) WriteIdentifier(v Identifier) error     { return v.Encode(pb.writer) }

// --- Byte Array ---

// ReadByteArray reads a byte array with VarInt length prefix.
func (pb *PacketBuffer) ReadByteArray(maxLen int) (ByteArray, error) {
	length, err := pb.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("failed to read byte array length: %w", err)
	}

	if length < 0 {
		return nil, fmt.Errorf("negative byte array length: %d", length)
	}

	if maxLen > 0 && int(length) > maxLen {
		return nil, fmt.Errorf("byte array length %d exceeds maximum %d", length, maxLen)
	}

	data := make([]byte, length)
	if _, err := pb.Read(data); err != nil {
		return nil, fmt.Errorf("failed to read byte array data: %w", err)
	}

	return data, nil
}

// WriteByteArray writes a byte array with VarInt length prefix.
func (pb *PacketBuffer) WriteByteArray(v ByteArray) error {
	if err := pb.WriteVarInt(VarInt(len(v))); err != nil {
		return fmt.Errorf("failed to write byte array length: %w", err)
	}
	if _, err := pb.Write(v); err != nil {
		return fmt.Errorf("failed to write byte array data: %w", err)
	}
	return nil
}

// ReadFixedByteArray reads exactly n bytes.
func (pb *PacketBuffer) ReadFixedByteArray(n int) (ByteArray, error) {
	data := make([]byte, n)
	if _, err := pb.Read(data); err != nil {
		return nil, err
	}
	return data, nil
}

// WriteFixedByteArray writes bytes without length prefix.
func (pb *PacketBuffer) WriteFixedByteArray(v ByteArray) error {
	_, err := pb.Write(v)
	return err
}

// ReadAllRemaining reads every byte left in the buffer, with no length prefix.
// Used for trailing fields whose size is implied by the enclosing frame.
func (pb *PacketBuffer) ReadAllRemaining() (ByteArray, error) {
	data, err := io.ReadAll(pb.reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read remaining bytes: %w", err)
	}
	return data, nil
}

// --- Chat ---

// ReadJSONTextComponent reads a JSONTextComponent (length-prefixed JSON string).
func (pb *PacketBuffer) ReadJSONTextComponent(maxLen int) (JSONTextComponent, error) {
	return DecodeJSONTextComponent(pb.reader, maxLen)
}

// WriteJSONTextComponent writes a JSONTextComponent.
func (pb *PacketBuffer) WriteJSONTextComponent(v JSONTextComponent) error {
	return v.Encode(pb.writer)
}

// ============================================================================
// UUID
// ============================================================================

// UUID is a 128-bit universally unique identifier, encoded as two big-endian
// 64-bit integers (most significant bits first).
type UUID [16]byte

// NilUUID is the zero UUID (all zeros).
var NilUUID = UUID{}

func (u UUID) Encode(w io.Writer) error {
	_, err := w.Write(u[:])
	return err
}

func DecodeUUID(r io.Reader) (UUID, error) {
	var u UUID
	if _, err := io.ReadFull(r, u[:]); err != nil {
		return UUID{}, err
	}
	return u, nil
}

// UUIDFromString parses a UUID from its string representation. Accepts both
// "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" and the bare 32-hex-digit form.
func UUIDFromString(s string) (UUID, error) {
	clean := make([]byte, 0, 32)
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			clean = append(clean, s[i])
		}
	}
	if len(clean) != 32 {
		return UUID{}, fmt.Errorf("invalid UUID string length: %d", len(clean))
	}

	var u UUID
	if _, err := hex.Decode(u[:], clean); err != nil {
		return UUID{}, fmt.Errorf("invalid UUID hex: %w", err)
	}
	return u, nil
}

// String returns the UUID in standard hyphenated format.
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// IsNil returns true if this is the nil UUID (all zeros).
func (u UUID) IsNil() bool {
	return u == NilUUID
}

func (pb *PacketBuffer) ReadUUID() (UUID, error) { return DecodeUUID(pb.reader) }
func (pb *PacketBuffer) WriteUUID(v UUID) error  { return v.Encode(pb.writer) }
