package license

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	p := Payload{
		FormatVersion:   FormatVersion,
		MaxMajorVersion: 2,
		IssuedAt:        uint64(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Unix()),
	}
	copy(p.OrderRef[:], "0123456789abcdef")

	b := p.Encode()
	assert.Equal(t, SerializedLength, len(b))
	assert.Equal(t, byte(1), b[0])
	assert.Equal(t, []byte("0123456789abcdef"), b[1:17])
	assert.Equal(t, []byte{0, 2}, b[17:19])
	// reserved tail stays zero
	for _, r := range b[27:] {
		assert.Equal(t, byte(0), r)
	}
}

func TestDecodePayload(t *testing.T) {
	p := Payload{
		FormatVersion:   FormatVersion,
		MaxMajorVersion: 3,
		IssuedAt:        1748736000,
	}
	copy(p.OrderRef[:], "fedcba9876543210")

	decoded, err := DecodePayload(p.Encode())
	assert.NoError(t, err)
	assert.Equal(t, p, *decoded)
}

func TestDecodePayloadLength(t *testing.T) {
	for _, n := range []int{0, 1, SerializedLength - 1, SerializedLength + 1, BundleLength} {
		_, err := DecodePayload(make([]byte, n))
		assert.ErrorIs(t, err, ErrMalformedPayload, "length %d", n)
	}
}

func TestDecodePayloadReserved(t *testing.T) {
	var p Payload
	p.FormatVersion = FormatVersion
	b := p.Encode()
	b[SerializedLength-1] = 0xff
	_, err := DecodePayload(b)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestBundle(t *testing.T) {
	payload := make([]byte, SerializedLength)
	signature := make([]byte, SignatureLength)
	for i := range signature {
		signature[i] = byte(i)
	}

	bundle := PackBundle(payload, signature)
	assert.Equal(t, BundleLength, len(bundle))

	p, s, err := UnpackBundle(bundle)
	assert.NoError(t, err)
	assert.Equal(t, payload, p)
	assert.Equal(t, signature, s)

	for _, n := range []int{0, SerializedLength, SignatureLength, BundleLength - 1, BundleLength + 1} {
		_, _, err := UnpackBundle(make([]byte, n))
		assert.ErrorIs(t, err, ErrMalformedBundle, "length %d", n)
	}
}
