package mccrypto

import (
	"crypto/md5"

	"github.com/go-mclib/gateway/internal/values"
)

// OfflineUUID derives the UUID vanilla servers assign an offline-mode
// player: a version-3 (name-based, MD5) UUID over "OfflinePlayer:<name>",
// matching `UUID.nameUUIDFromBytes` in the vanilla server.
func OfflineUUID(username string) values.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = (sum[6] & 0x0f) | 0x30 // version 3
	sum[8] = (sum[8] & 0x3f) | 0x80 // variant RFC 4122
	var u values.UUID
	copy(u[:], sum[:])
	return u
}
