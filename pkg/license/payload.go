package license

import (
	"encoding/binary"
)

const (
	// FormatVersion is the current payload format version. Bump it when the
	// layout below changes; already-issued keys keep their embedded version.
	FormatVersion byte = 1

	// OrderRefLength is the fixed width of the order reference field.
	OrderRefLength = 16

	// SerializedLength is the exact byte length of an encoded payload.
	// The reserved tail pads the bundle to a whole number of 5-character
	// groups under the text codec (see pkg/keycodec).
	SerializedLength = 1 + OrderRefLength + 2 + 8 + reservedLength

	reservedLength = 9
)

// Payload is the fixed-layout binary license payload. All integers are
// big-endian so encoded bytes are identical across platforms.
type Payload struct {
	FormatVersion   byte
	OrderRef        [OrderRefLength]byte
	MaxMajorVersion uint16
	IssuedAt        uint64 // epoch seconds
}

// Encode packs the payload into its fixed byte layout.
func (p *Payload) Encode() []byte {
	buf := make([]byte, SerializedLength)
	buf[0] = p.FormatVersion
	copy(buf[1:1+OrderRefLength], p.OrderRef[:])
	binary.BigEndian.PutUint16(buf[17:19], p.MaxMajorVersion)
	binary.BigEndian.PutUint64(buf[19:27], p.IssuedAt)
	// buf[27:36] reserved, zero
	return buf
}

// DecodePayload parses payload bytes. Input of any length other than
// SerializedLength fails with ErrMalformedPayload before any field is read.
func DecodePayload(b []byte) (*Payload, error) {
	if len(b) != SerializedLength {
		return nil, ErrMalformedPayload
	}
	p := &Payload{
		FormatVersion:   b[0],
		MaxMajorVersion: binary.BigEndian.Uint16(b[17:19]),
		IssuedAt:        binary.BigEndian.Uint64(b[19:27]),
	}
	copy(p.OrderRef[:], b[1:1+OrderRefLength])
	if p.FormatVersion == FormatVersion {
		for _, r := range b[SerializedLength-reservedLength:] {
			if r != 0 {
				return nil, ErrMalformedPayload
			}
		}
	}
	return p, nil
}
