package registry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keymint-io/keymint/db/dao"
	"github.com/keymint-io/keymint/db/entities"
	"github.com/keymint-io/keymint/mcache"
	"github.com/keymint-io/keymint/pkg/keycodec"
	"github.com/keymint-io/keymint/pkg/license"
	"github.com/keymint-io/keymint/utils"
)

type memoryLicenseDAO struct {
	dao.LicenseDAO
	rows map[string]*entities.License // by id
}

func (d *memoryLicenseDAO) Insert(ctx context.Context, entity *entities.License) error {
	d.rows[entity.ID] = entity
	return nil
}

func (d *memoryLicenseDAO) GetByKeyHash(ctx context.Context, keyHash string) (*entities.License, error) {
	for _, row := range d.rows {
		if row.KeyHash == keyHash {
			return row, nil
		}
	}
	return nil, nil
}

func (d *memoryLicenseDAO) UpdateStatus(ctx context.Context, id string, status entities.LicenseStatus) error {
	if row, ok := d.rows[id]; ok {
		row.Status = status
	}
	return nil
}

func (d *memoryLicenseDAO) TransitionStatus(ctx context.Context, id string, from, to entities.LicenseStatus) (bool, error) {
	row, ok := d.rows[id]
	if !ok || row.Status != from {
		return false, nil
	}
	row.Status = to
	return true, nil
}

func (d *memoryLicenseDAO) ListByOrderRef(ctx context.Context, orderRef string) ([]*entities.License, error) {
	var list []*entities.License
	for _, row := range d.rows {
		if row.OrderRef == orderRef {
			list = append(list, row)
		}
	}
	return list, nil
}

func setup(t *testing.T) (*Registry, *memoryLicenseDAO) {
	mcache.Set(mcache.NewMCache(&mcache.Options{L1Size: 128, L1TTL: time.Minute}))

	publicKey, privateKey, err := license.GenerateKeyPair()
	require.NoError(t, err)
	signer, err := license.NewSigner(privateKey)
	require.NoError(t, err)
	verifier, err := license.NewVerifier(publicKey)
	require.NoError(t, err)

	licenses := &memoryLicenseDAO{rows: map[string]*entities.License{}}
	registry := NewRegistry(Options{
		Licenses: licenses,
		Signer:   signer,
		Verifier: verifier,
	})
	return registry, licenses
}

func TestIssueRoundTrip(t *testing.T) {
	registry, _ := setup(t)
	orderRef := utils.UUID()

	entity, err := registry.Issue(context.TODO(), orderRef, 2)
	require.NoError(t, err)

	assert.Equal(t, entities.LicenseStatusActive, entity.Status)
	assert.Equal(t, orderRef, entity.OrderRef)
	assert.Equal(t, uint16(2), entity.MaxMajorVersion)
	assert.Equal(t, utils.Sha256(entity.Key), entity.KeyHash)
	assert.True(t, keycodec.IsWellFormed(entity.Key))
	assert.Len(t, strings.Split(entity.Key, "-"), keycodec.GroupCount)

	assert.True(t, registry.Verify(entity.Key))

	found, err := registry.FindByKey(context.TODO(), entity.Key)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entity.ID, found.ID)
}

func TestIssueInvalidOrderRef(t *testing.T) {
	registry, _ := setup(t)
	_, err := registry.Issue(context.TODO(), "order-42", 1)
	assert.Equal(t, ErrInvalidOrderRef, err)
}

func TestVerifyRejectsTampering(t *testing.T) {
	registry, _ := setup(t)
	entity, err := registry.Issue(context.TODO(), utils.UUID(), 1)
	require.NoError(t, err)

	// flip one character to another alphabet member
	key := []byte(entity.Key)
	replacement := byte('7')
	if key[0] == replacement {
		replacement = '8'
	}
	key[0] = replacement
	assert.False(t, registry.Verify(string(key)))

	assert.False(t, registry.Verify("HELLO-WORLD"))
	assert.False(t, registry.Verify(""))
}

func TestIsValid(t *testing.T) {
	registry, licenses := setup(t)
	entity, err := registry.Issue(context.TODO(), utils.UUID(), 1)
	require.NoError(t, err)

	valid, err := registry.IsValid(context.TODO(), entity.Key)
	require.NoError(t, err)
	assert.True(t, valid)

	// a status change behind the cache's back is not observed yet
	licenses.rows[entity.ID].Status = entities.LicenseStatusExpired
	valid, err = registry.IsValid(context.TODO(), entity.Key)
	require.NoError(t, err)
	assert.True(t, valid)

	// an explicit revoke invalidates eagerly
	licenses.rows[entity.ID].Status = entities.LicenseStatusActive
	require.NoError(t, registry.Revoke(context.TODO(), entity))
	valid, err = registry.IsValid(context.TODO(), entity.Key)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestIsValidMalformed(t *testing.T) {
	registry, _ := setup(t)
	valid, err := registry.IsValid(context.TODO(), "not a key")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestRefund(t *testing.T) {
	registry, licenses := setup(t)
	orderRef := utils.UUID()

	first, err := registry.Issue(context.TODO(), orderRef, 1)
	require.NoError(t, err)
	second, err := registry.Issue(context.TODO(), orderRef, 1)
	require.NoError(t, err)
	other, err := registry.Issue(context.TODO(), utils.UUID(), 1)
	require.NoError(t, err)

	// a revoked license is left untouched by a refund
	require.NoError(t, registry.Revoke(context.TODO(), second))

	require.NoError(t, registry.Refund(context.TODO(), orderRef))

	assert.Equal(t, entities.LicenseStatusRefunded, licenses.rows[first.ID].Status)
	assert.Equal(t, entities.LicenseStatusRevoked, licenses.rows[second.ID].Status)
	assert.Equal(t, entities.LicenseStatusActive, licenses.rows[other.ID].Status)
}
