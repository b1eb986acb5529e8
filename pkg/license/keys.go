package license

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
)

// GenerateKeyPair generates a fresh hex-encoded Ed25519 key pair.
func GenerateKeyPair() (publicKey, privateKey string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(pub), hex.EncodeToString(priv), nil
}
