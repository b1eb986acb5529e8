package activation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keymint-io/keymint/db/dao"
	"github.com/keymint-io/keymint/db/entities"
	"github.com/keymint-io/keymint/utils"
)

type fakeTx struct{}

func (fakeTx) TX(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeResolver struct {
	valid    map[string]bool
	licenses map[string]*entities.License
}

func (r *fakeResolver) Verify(key string) bool {
	return r.valid[key]
}

func (r *fakeResolver) FindByKey(ctx context.Context, key string) (*entities.License, error) {
	return r.licenses[key], nil
}

type fakeLicenseDAO struct {
	dao.LicenseDAO
	rows map[string]*entities.License
}

func (d *fakeLicenseDAO) GetForUpdate(ctx context.Context, id string) (*entities.License, error) {
	return d.rows[id], nil
}

type fakeActivationDAO struct {
	dao.ActivationDAO
	rows      map[string]*entities.Activation // licenseId + ":" + deviceHash
	touched   int
	insertErr error
}

func (d *fakeActivationDAO) GetByDeviceHash(ctx context.Context, licenseId, deviceHash string) (*entities.Activation, error) {
	return d.rows[licenseId+":"+deviceHash], nil
}

func (d *fakeActivationDAO) CountByLicense(ctx context.Context, licenseId string) (int64, error) {
	var n int64
	for _, row := range d.rows {
		if row.LicenseId == licenseId {
			n++
		}
	}
	return n, nil
}

func (d *fakeActivationDAO) Touch(ctx context.Context, id string, appVersion string) error {
	d.touched++
	return nil
}

func (d *fakeActivationDAO) Insert(ctx context.Context, entity *entities.Activation) error {
	if d.insertErr != nil {
		return d.insertErr
	}
	d.rows[entity.LicenseId+":"+entity.DeviceHash] = entity
	return nil
}

func setup(entity *entities.License) (*Engine, *fakeActivationDAO) {
	resolver := &fakeResolver{
		valid:    map[string]bool{},
		licenses: map[string]*entities.License{},
	}
	licenses := &fakeLicenseDAO{rows: map[string]*entities.License{}}
	if entity != nil {
		resolver.valid[entity.Key] = true
		resolver.licenses[entity.Key] = entity
		licenses.rows[entity.ID] = entity
	}
	activations := &fakeActivationDAO{rows: map[string]*entities.Activation{}}
	engine := NewEngine(Options{
		TX:          fakeTx{},
		Registry:    resolver,
		Licenses:    licenses,
		Activations: activations,
		DeviceLimit: 3,
	})
	return engine, activations
}

func activeLicense() *entities.License {
	return &entities.License{
		ID:              utils.UUID(),
		Key:             "KEY-1",
		KeyHash:         utils.Sha256("KEY-1"),
		Status:          entities.LicenseStatusActive,
		MaxMajorVersion: 2,
	}
}

func TestActivateInvalidKey(t *testing.T) {
	engine, _ := setup(nil)
	result, err := engine.Activate(context.TODO(), "garbage", "1.0.0", "dev-1")
	assert.NoError(t, err)
	assert.False(t, result.Activated)
	assert.Equal(t, CodeInvalidKey, result.Code)
}

func TestActivateUnknownKey(t *testing.T) {
	engine, _ := setup(nil)
	// well-formed to the resolver, but absent from storage
	resolver := engine.registry.(*fakeResolver)
	resolver.valid["KEY-GHOST"] = true
	result, err := engine.Activate(context.TODO(), "KEY-GHOST", "1.0.0", "dev-1")
	assert.NoError(t, err)
	assert.Equal(t, CodeLicenseNotFound, result.Code)
}

func TestActivateStatusGate(t *testing.T) {
	tests := []struct {
		status entities.LicenseStatus
		code   ErrorCode
	}{
		{entities.LicenseStatusRevoked, CodeLicenseRevoked},
		{entities.LicenseStatusRefunded, CodeLicenseRefunded},
		{entities.LicenseStatusExpired, CodeLicenseExpired},
	}
	for _, test := range tests {
		entity := activeLicense()
		entity.Status = test.status
		engine, activations := setup(entity)
		result, err := engine.Activate(context.TODO(), entity.Key, "1.0.0", "dev-1")
		assert.NoError(t, err)
		assert.False(t, result.Activated)
		assert.Equal(t, test.code, result.Code)
		assert.Len(t, activations.rows, 0)
	}
}

func TestActivateVersionGate(t *testing.T) {
	entity := activeLicense() // covers majors up to 2

	engine, _ := setup(entity)
	result, err := engine.Activate(context.TODO(), entity.Key, "3.0.0", "dev-1")
	assert.NoError(t, err)
	assert.False(t, result.Activated)
	assert.Equal(t, CodeVersionNotSupported, result.Code)

	result, err = engine.Activate(context.TODO(), entity.Key, "2.5.0", "dev-1")
	assert.NoError(t, err)
	assert.True(t, result.Activated)
	assert.Empty(t, result.Code)

	result, err = engine.Activate(context.TODO(), entity.Key, "not-a-version", "dev-1")
	assert.NoError(t, err)
	assert.Equal(t, CodeVersionNotSupported, result.Code)
}

func TestActivateWithoutDevice(t *testing.T) {
	entity := activeLicense()
	engine, activations := setup(entity)

	result, err := engine.Activate(context.TODO(), entity.Key, "1.2.3", "")
	assert.NoError(t, err)
	assert.True(t, result.Activated)
	assert.False(t, result.Created)
	assert.Len(t, activations.rows, 0)
}

func TestActivateIdempotent(t *testing.T) {
	entity := activeLicense()
	engine, activations := setup(entity)

	result, err := engine.Activate(context.TODO(), entity.Key, "1.0.0", "dev-1")
	assert.NoError(t, err)
	assert.True(t, result.Activated)
	assert.True(t, result.Created)
	assert.Empty(t, result.Code)
	assert.Len(t, activations.rows, 1)

	// same device again: success, no second record, tagged as a repeat
	result, err = engine.Activate(context.TODO(), entity.Key, "1.1.0", "dev-1")
	assert.NoError(t, err)
	assert.True(t, result.Activated)
	assert.False(t, result.Created)
	assert.Equal(t, CodeLicenseAlreadyActivated, result.Code)
	assert.Len(t, activations.rows, 1)
	assert.Equal(t, 1, activations.touched)
}

func TestActivateDeviceLimit(t *testing.T) {
	entity := activeLicense()
	engine, activations := setup(entity)

	for i := 0; i < 3; i++ {
		result, err := engine.Activate(context.TODO(), entity.Key, "1.0.0", fmt.Sprintf("dev-%d", i))
		assert.NoError(t, err)
		assert.True(t, result.Activated)
	}
	assert.Len(t, activations.rows, 3)

	result, err := engine.Activate(context.TODO(), entity.Key, "1.0.0", "dev-3")
	assert.NoError(t, err)
	assert.False(t, result.Activated)
	assert.Equal(t, CodeDeviceLimitExceeded, result.Code)
	assert.Len(t, activations.rows, 3)

	// a device already counted still activates at the limit
	result, err = engine.Activate(context.TODO(), entity.Key, "1.0.0", "dev-0")
	assert.NoError(t, err)
	assert.True(t, result.Activated)
	assert.Equal(t, CodeLicenseAlreadyActivated, result.Code)
}

func TestActivateConstraintRace(t *testing.T) {
	entity := activeLicense()
	engine, activations := setup(entity)
	activations.insertErr = dao.ErrConstraintViolation

	result, err := engine.Activate(context.TODO(), entity.Key, "1.0.0", "dev-1")
	assert.NoError(t, err)
	assert.True(t, result.Activated)
	assert.False(t, result.Created)
	assert.Equal(t, CodeLicenseAlreadyActivated, result.Code)
}

func TestActivateLockRecheck(t *testing.T) {
	entity := activeLicense()
	engine, _ := setup(entity)

	// status flips between the unlocked read and the locked one
	engine.licenses.(*fakeLicenseDAO).rows[entity.ID] = &entities.License{
		ID:     entity.ID,
		Key:    entity.Key,
		Status: entities.LicenseStatusRevoked,
	}
	result, err := engine.Activate(context.TODO(), entity.Key, "1.0.0", "dev-1")
	assert.NoError(t, err)
	assert.False(t, result.Activated)
	assert.Equal(t, CodeLicenseRevoked, result.Code)
}
