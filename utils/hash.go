package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sha256 is the one-way digest used for license lookup hashes and device
// hashes. Fixed 64-char hex output; the pre-image is never persisted.
func Sha256(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
