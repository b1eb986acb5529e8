package activation

// ErrorCode is the closed enumeration activation callers dispatch on.
// Human messages are display-only and must not be parsed.
type ErrorCode string

const (
	CodeLicenseNotFound     ErrorCode = "LICENSE_NOT_FOUND"
	CodeInvalidKey          ErrorCode = "INVALID_KEY"
	CodeLicenseRevoked      ErrorCode = "LICENSE_REVOKED"
	CodeLicenseRefunded     ErrorCode = "LICENSE_REFUNDED"
	CodeLicenseExpired      ErrorCode = "LICENSE_EXPIRED"
	CodeVersionNotSupported ErrorCode = "VERSION_NOT_SUPPORTED"
	CodeDeviceLimitExceeded ErrorCode = "DEVICE_LIMIT_EXCEEDED"

	// CodeLicenseAlreadyActivated tags the idempotent success returned for
	// a repeat activation by the same device, so upstreams that want
	// conflict semantics (e.g. HTTP 409) can signal it explicitly.
	CodeLicenseAlreadyActivated ErrorCode = "LICENSE_ALREADY_ACTIVATED"
)
