package dao

import (
	"context"

	"github.com/keymint-io/keymint/db/entities"
	"github.com/keymint-io/keymint/db/query"
)

type BaseDAO[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) (bool, error)
	Page(ctx context.Context, q query.Queryer) ([]*T, int64, error)
	List(ctx context.Context, q query.Queryer) ([]*T, error)
	Count(ctx context.Context, conditions map[string]interface{}) (int64, error)
}

type LicenseDAO interface {
	BaseDAO[entities.License]
	GetByKeyHash(ctx context.Context, keyHash string) (*entities.License, error)
	GetForUpdate(ctx context.Context, id string) (*entities.License, error)
	UpdateStatus(ctx context.Context, id string, status entities.LicenseStatus) error
	TransitionStatus(ctx context.Context, id string, from, to entities.LicenseStatus) (bool, error)
	ListByOrderRef(ctx context.Context, orderRef string) ([]*entities.License, error)
}

type ActivationDAO interface {
	BaseDAO[entities.Activation]
	GetByDeviceHash(ctx context.Context, licenseId, deviceHash string) (*entities.Activation, error)
	CountByLicense(ctx context.Context, licenseId string) (int64, error)
	Touch(ctx context.Context, id string, appVersion string) error
}
