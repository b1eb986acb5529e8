package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, LogLevelInfo, cfg.Log.Level)
	assert.Equal(t, LogFormatText, cfg.Log.Format)
	assert.Equal(t, uint32(5432), cfg.Database.Port)
	assert.Equal(t, "keymint", cfg.Database.Database)
	assert.Equal(t, uint32(6379), cfg.Redis.Port)
	assert.Equal(t, "127.0.0.1:9610", cfg.Admin.Listen)
	assert.Equal(t, uint32(3), cfg.License.DeviceLimit)
	assert.True(t, cfg.AccessLog.Enabled)
	assert.Equal(t, LogFormatText, cfg.AccessLog.Format)
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.License.PrivateKey = "d44d89fab9acb2a530656c482196afc2c0a757b1029dc41a383149c1940701603eed19da2c0c83e467c3fe11d758ee3678e15e4b4f6caba2d368b6aa9245e09d"
	cfg.License.PublicKey = "3eed19da2c0c83e467c3fe11d758ee3678e15e4b4f6caba2d368b6aa9245e09d"
	assert.NoError(t, cfg.Validate())

	cfg.Log.Level = "nope"
	assert.Error(t, cfg.Validate())
	cfg.Log.Level = LogLevelInfo

	cfg.License.DeviceLimit = 0
	assert.EqualError(t, cfg.Validate(), "license.device_limit must be >= 1")

	cfg.License.PublicKey = "not-hex"
	assert.EqualError(t, cfg.Validate(), "license.public_key must be hex-encoded")

	cfg.License.PrivateKey = ""
	assert.EqualError(t, cfg.Validate(), "license.private_key is required")
}

func TestEnvOverride(t *testing.T) {
	os.Setenv("KEYMINT_DATABASE_HOST", "db.internal")
	os.Setenv("KEYMINT_LICENSE_DEVICE_LIMIT", "5")
	defer os.Unsetenv("KEYMINT_DATABASE_HOST")
	defer os.Unsetenv("KEYMINT_LICENSE_DEVICE_LIMIT")

	cfg := New()
	assert.NoError(t, Load("", cfg))
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, uint32(5), cfg.License.DeviceLimit)
}

func TestGetDSN(t *testing.T) {
	cfg := New()
	assert.Equal(t, "postgres://keymint:@localhost:5432/keymint?sslmode=disable", cfg.Database.GetDSN())
}
