package license

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

type Verifier struct {
	publicKey ed25519.PublicKey
}

// NewVerifier creates a verifier from a hex-encoded Ed25519 public key. The
// public key is safe to embed in client artifacts.
func NewVerifier(publicKey string) (*Verifier, error) {
	key, err := hex.DecodeString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPublicKeyInvalid, err.Error())
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, ErrPublicKeyInvalid
	}
	return &Verifier{
		publicKey: key,
	}, nil
}

// Verify reports whether signature is a valid signature over payload.
// A wrong-length signature is rejected up front; the length is not
// secret-dependent, so this shortcut leaks nothing. The comparison inside
// ed25519.Verify is constant-time.
func (v *Verifier) Verify(payload, signature []byte) bool {
	if len(signature) != SignatureLength {
		return false
	}
	return ed25519.Verify(v.publicKey, payload, signature)
}
