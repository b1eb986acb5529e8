package entities

type LicenseStatus string

const (
	LicenseStatusActive   LicenseStatus = "active"
	LicenseStatusRevoked  LicenseStatus = "revoked"
	LicenseStatusExpired  LicenseStatus = "expired"
	LicenseStatusRefunded LicenseStatus = "refunded"
)

func (s LicenseStatus) String() string {
	return string(s)
}

// Terminal reports whether the status permits no further automatic
// transitions. A non-active license is never resurrected; a new issuance
// creates a fresh record instead.
func (s LicenseStatus) Terminal() bool {
	return s != LicenseStatusActive
}

// License is a persisted license record. KeyHash is the only queryable form
// of the key; the plaintext Key column exists for delivery audit and manual
// resend only, and is masked in JSON.
type License struct {
	ID              string        `json:"id" db:"id"`
	KeyHash         string        `json:"key_hash" db:"key_hash"`
	Key             string        `json:"-" db:"key"`
	Status          LicenseStatus `json:"status" db:"status"`
	MaxMajorVersion uint16        `json:"max_major_version" db:"max_major_version"`
	OrderRef        string        `json:"order_ref" db:"order_ref"`
	Metadata        Metadata      `json:"metadata" db:"metadata"`

	BaseModel
}
