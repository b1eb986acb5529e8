// Package keycodec renders license bundles as human-typeable key strings and
// parses them back. The alphabet excludes visually ambiguous characters
// (0, 1, O, I) and the encoded form is grouped for readability:
//
//	XXXXX-XXXXX-...-XXXXX (32 groups of 5)
//
// The grouping is encoding-dependent only, never data-dependent: a bundle is
// always license.BundleLength bytes, so a key is always EncodedLength
// characters in GroupCount groups.
package keycodec

import (
	"encoding/base32"
	"regexp"
	"strings"

	"github.com/keymint-io/keymint/pkg/license"
)

// Alphabet is the 32-character key alphabet: digits 2-9 and uppercase
// letters excluding O and I. Stable across versions; changing it would break
// already-issued keys and requires a payload format-version bump instead.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const (
	// GroupSize is the number of characters per hyphen-separated group.
	GroupSize = 5

	// EncodedLength is the number of alphabet characters in a key,
	// excluding hyphens. license.BundleLength is sized so this is a whole
	// multiple of GroupSize.
	EncodedLength = license.BundleLength * 8 / 5

	// GroupCount is the number of hyphen-separated groups in a key.
	GroupCount = EncodedLength / GroupSize

	// MinGroupCount and MaxGroupCount bound the group counts IsWellFormed
	// accepts. The pre-check is a shape filter shared across payload format
	// versions, so it tolerates shorter and longer bundles than the current
	// one; Decode enforces the exact length.
	MinGroupCount = 2
	MaxGroupCount = 2 * GroupCount
)

var encoding = base32.NewEncoding(Alphabet).WithPadding(base32.NoPadding)

var keyPattern = regexp.MustCompile(`^[2-9A-HJ-NP-Z]{5}(?:-[2-9A-HJ-NP-Z]{5}){1,63}$`)

// Encode renders bundle bytes as a grouped key string.
func Encode(bundle []byte) (string, error) {
	if len(bundle) != license.BundleLength {
		return "", license.ErrMalformedBundle
	}
	encoded := encoding.EncodeToString(bundle)
	var sb strings.Builder
	sb.Grow(EncodedLength + GroupCount - 1)
	for i := 0; i < len(encoded); i += GroupSize {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(encoded[i : i+GroupSize])
	}
	return sb.String(), nil
}

// Decode parses a key string back to bundle bytes. Lowercase input is
// accepted and normalized; hyphens are stripped regardless of placement.
// Any character outside the alphabet, or a decoded length other than
// license.BundleLength, fails with ErrInvalidKeyFormat.
func Decode(key string) ([]byte, error) {
	stripped := strings.ReplaceAll(strings.ToUpper(key), "-", "")
	if len(stripped) != EncodedLength {
		return nil, ErrInvalidKeyFormat
	}
	bundle, err := encoding.DecodeString(stripped)
	if err != nil {
		return nil, ErrInvalidKeyFormat
	}
	if len(bundle) != license.BundleLength {
		return nil, ErrInvalidKeyFormat
	}
	return bundle, nil
}

// IsWellFormed is a cheap pre-check usable at input boundaries before any
// decoding or cryptography: between MinGroupCount and MaxGroupCount groups
// of GroupSize alphabet characters joined by hyphens. It does not pin the
// group count of the current format; Decode does.
func IsWellFormed(key string) bool {
	return keyPattern.MatchString(strings.ToUpper(key))
}
