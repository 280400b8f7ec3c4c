package values

import (
	"fmt"
	"io"
)

// ByteArray is a raw sequence of bytes, usually paired with a VarInt length
// prefix by the caller (see PacketBuffer.ReadByteArray/WriteByteArray) or
// written at a fixed size known from context.
type ByteArray []byte

// Encode writes the ByteArray to w without any length prefix.
func (v ByteArray) Encode(w io.Writer) error {
	_, err := w.Write(v)
	return err
}

// PrefixedOptional is a value preceded by a Boolean presence flag.
//
// If the flag is false, no further bytes are read or written for this field.
type PrefixedOptional[T interface {
	Encode(io.Writer) error
}] struct {
	Present bool
	Value   T
}

// Encode writes the presence flag, followed by the value if present.
func (v PrefixedOptional[T]) Encode(w io.Writer) error {
	if err := Boolean(v.Present).Encode(w); err != nil {
		return fmt.Errorf("failed to write optional presence flag: %w", err)
	}
	if !v.Present {
		return nil
	}
	return v.Value.Encode(w)
}

// DecodePrefixedOptional reads a presence flag and, if set, decodes the value with decode.
func DecodePrefixedOptional[T interface {
	Encode(io.Writer) error
}](r io.Reader, decode func(io.Reader) (T, error)) (PrefixedOptional[T], error) {
	present, err := DecodeBoolean(r)
	if err != nil {
		return PrefixedOptional[T]{}, fmt.Errorf("failed to read optional presence flag: %w", err)
	}
	if !present {
		return PrefixedOptional[T]{Present: false}, nil
	}
	value, err := decode(r)
	if err != nil {
		return PrefixedOptional[T]{}, fmt.Errorf("failed to read optional value: %w", err)
	}
	return PrefixedOptional[T]{Present: true, Value: value}, nil
}

// JSONTextComponent is a Chat value: a String field carrying a JSON-encoded
// text component (e.g. a disconnect reason). The gateway treats it as an
// opaque JSON string — it never renders or interprets the component tree.
type JSONTextComponent string

// Encode writes the JSONTextComponent as a length-prefixed String.
func (v JSONTextComponent) Encode(w io.Writer) error {
	return String(v).Encode(w)
}

// DecodeJSONTextComponent reads a JSONTextComponent from r.
// maxLen bounds the encoded JSON string length in characters (0 = no limit).
func DecodeJSONTextComponent(r io.Reader, maxLen int) (JSONTextComponent, error) {
	s, err := DecodeString(r, maxLen)
	if err != nil {
		return "", err
	}
	return JSONTextComponent(s), nil
}

// NewDisconnectReason builds a plain-text JSONTextComponent disconnect reason,
// e.g. `{"text":"..."}`, escaping the message for embedding in JSON.
func NewDisconnectReason(message string) JSONTextComponent {
	return JSONTextComponent(fmt.Sprintf(`{"text":%q}`, message))
}
