package session

import "github.com/go-mclib/gateway/internal/packet"

// CommKind discriminates a MinecraftCommunication payload.
type CommKind uint8

const (
	CommRawData CommKind = iota
	CommPacket
	CommShutdown
	CommCustomData
)

// MinecraftCommunication is a message envelope for a client actor and a
// server actor running on separate goroutines. actor.RunSession runs both
// sides on one goroutine and does not use it. T is whatever
// proxy-mode-specific payload CommCustomData carries.
type MinecraftCommunication[T any] struct {
	Kind   CommKind
	Raw    []byte
	Packet packet.Packet
	Custom T
}

// RawData wraps a raw byte payload forwarded without packet-level decoding
// (used once a session is Transferring in Passthrough mode).
func RawData[T any](b []byte) MinecraftCommunication[T] {
	return MinecraftCommunication[T]{Kind: CommRawData, Raw: b}
}

// PacketData wraps a decoded Packet.
func PacketData[T any](p packet.Packet) MinecraftCommunication[T] {
	return MinecraftCommunication[T]{Kind: CommPacket, Packet: p}
}

// Shutdown signals the peer actor to drain and exit.
func Shutdown[T any]() MinecraftCommunication[T] {
	return MinecraftCommunication[T]{Kind: CommShutdown}
}

// CustomData wraps a proxy-mode-specific payload.
func CustomData[T any](v T) MinecraftCommunication[T] {
	return MinecraftCommunication[T]{Kind: CommCustomData, Custom: v}
}
