package license

// BundleLength is the exact byte length of payload ‖ signature.
const BundleLength = SerializedLength + SignatureLength

// PackBundle concatenates payload bytes and signature bytes.
func PackBundle(payload, signature []byte) []byte {
	bundle := make([]byte, 0, BundleLength)
	bundle = append(bundle, payload...)
	bundle = append(bundle, signature...)
	return bundle
}

// UnpackBundle splits a bundle into payload bytes and signature bytes.
// It fails with ErrMalformedBundle for any other total length. Unpacking
// never implies validity; callers must verify the signature separately.
func UnpackBundle(bundle []byte) (payload, signature []byte, err error) {
	if len(bundle) != BundleLength {
		return nil, nil, ErrMalformedBundle
	}
	return bundle[:SerializedLength], bundle[SerializedLength:], nil
}
