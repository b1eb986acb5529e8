package license

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// SignatureLength is the byte length of a license signature.
const SignatureLength = ed25519.SignatureSize

type Signer struct {
	privateKey ed25519.PrivateKey
}

// NewSigner creates a signer from a hex-encoded Ed25519 private key. The
// private key lives only in server-side configuration.
func NewSigner(privateKey string) (*Signer, error) {
	key, err := hex.DecodeString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPrivateKeyInvalid, err.Error())
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, ErrPrivateKeyInvalid
	}
	return &Signer{
		privateKey: key,
	}, nil
}

// Sign signs the exact payload bytes, never a textual re-encoding.
func (s *Signer) Sign(payload []byte) []byte {
	return ed25519.Sign(s.privateKey, payload)
}
