package entities

import (
	"github.com/keymint-io/keymint/pkg/types"
)

// Activation records one device holding an activation under a license.
// DeviceHash is a one-way digest of the client-supplied device identifier;
// the raw identifier is never persisted. (license_id, device_hash) is unique.
type Activation struct {
	ID         string         `json:"id" db:"id"`
	LicenseId  string         `json:"license_id" db:"license_id"`
	DeviceHash string         `json:"device_hash" db:"device_hash"`
	AppVersion string         `json:"app_version" db:"app_version"`
	LastSeenAt types.UnixTime `json:"last_seen_at" db:"last_seen_at"`

	BaseModel
}
