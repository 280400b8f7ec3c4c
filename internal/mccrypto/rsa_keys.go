package mccrypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
)

// GenerateServerKeyPair creates a fresh 1024-bit RSA key pair for the
// server side of the online-mode encryption handshake (EncryptionRequest's
// public key, kept only for the session's lifetime — vanilla servers also
// mint a new key pair per run rather than persisting one). This is the only
// key-management operation the gateway needs: it never reads or writes a key
// pair from disk, so the teacher's PEM parsing helpers (private/public key
// parsing, PEM extraction) have no caller here and were dropped rather than
// carried along unused.
func GenerateServerKeyPair() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	return key, nil
}

// ConvertPublicKeyToSPKI converts an RSA public key to SPKI DER format, the
// encoding EncryptionRequest's public key field expects on the wire.
func ConvertPublicKeyToSPKI(publicKey *rsa.PublicKey) ([]byte, error) {
	return x509.MarshalPKIXPublicKey(publicKey)
}
