package config

import (
	"encoding/hex"
	"fmt"
)

// LicenseConfig holds the signing key pair and activation policy. The
// private key must never be shipped to clients; the public key may be
// embedded in the desktop application for offline verification.
type LicenseConfig struct {
	PrivateKey string `yaml:"private_key" json:"-" envconfig:"PRIVATE_KEY"`
	PublicKey  string `yaml:"public_key" json:"public_key" envconfig:"PUBLIC_KEY"`

	// DeviceLimit is the per-license activation policy constant. Not
	// user-configurable at request time.
	DeviceLimit uint32 `yaml:"device_limit" json:"device_limit" envconfig:"DEVICE_LIMIT" default:"3"`
}

func (cfg LicenseConfig) Validate() error {
	if cfg.PrivateKey == "" {
		return fmt.Errorf("license.private_key is required")
	}
	if cfg.PublicKey == "" {
		return fmt.Errorf("license.public_key is required")
	}
	if _, err := hex.DecodeString(cfg.PrivateKey); err != nil {
		return fmt.Errorf("license.private_key must be hex-encoded")
	}
	if _, err := hex.DecodeString(cfg.PublicKey); err != nil {
		return fmt.Errorf("license.public_key must be hex-encoded")
	}
	if cfg.DeviceLimit == 0 {
		return fmt.Errorf("license.device_limit must be >= 1")
	}
	return nil
}
