// Package netio provides the transport-level primitives the gateway's
// connection actors share: an optionally-encrypting net.Conn wrapper and
// buffered packet reader/writer pair built on top of it.
package netio

import (
	"net"

	"github.com/go-mclib/gateway/internal/mccrypto"
)

// Conn wraps a net.Conn, transparently applying AES-128/CFB8 encryption once
// enabled. Encryption wraps framing: nothing above this layer — including the
// VarInt length prefix read by PacketReader — ever sees ciphertext directly.
//
// Enabling encryption is one-way for the lifetime of the connection; there is
// no re-key.
type Conn struct {
	net.Conn
	encryption *mccrypto.Encryption
}

// NewConn wraps conn with encryption support, initially disabled.
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		Conn:       conn,
		encryption: mccrypto.NewEncryption(),
	}
}

// Read implements io.Reader, decrypting in place when encryption is enabled.
// Decryption is streaming: it never needs more than the bytes already read to
// produce their plaintext, so a caller decoding a VarInt length prefix one
// byte at a time works the same with or without encryption enabled.
func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 && c.encryption.IsEnabled() {
		copy(p[:n], c.encryption.Decrypt(p[:n]))
	}
	return n, err
}

// Write implements io.Writer, encrypting the full buffer before it reaches
// the underlying transport when encryption is enabled.
func (c *Conn) Write(p []byte) (int, error) {
	data := p
	if c.encryption.IsEnabled() {
		data = c.encryption.Encrypt(p)
	}
	return c.Conn.Write(data)
}

// Encryption returns the connection's encryption state, for the login flow to
// configure once the shared secret has been negotiated.
func (c *Conn) Encryption() *mccrypto.Encryption {
	return c.encryption
}
