package license

import "errors"

var (
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrMalformedBundle   = errors.New("malformed bundle")
	ErrPrivateKeyInvalid = errors.New("private key is invalid")
	ErrPublicKeyInvalid  = errors.New("public key is invalid")
)
