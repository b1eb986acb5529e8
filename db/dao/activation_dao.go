package dao

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/keymint-io/keymint/db/entities"
	"github.com/keymint-io/keymint/pkg/types"
)

type activationDAO struct {
	*DAO[entities.Activation]
}

func NewActivationDAO(db *sqlx.DB) ActivationDAO {
	return &activationDAO{
		DAO: NewDAO[entities.Activation]("activations", db),
	}
}

func (dao *activationDAO) GetByDeviceHash(ctx context.Context, licenseId, deviceHash string) (*entities.Activation, error) {
	statement, args := psql.Select("*").From(dao.table).
		Where(sq.Eq{"license_id": licenseId, "device_hash": deviceHash}).
		MustSql()
	dao.debugSQL(statement, args)
	entity := new(entities.Activation)
	err := dao.UnsafeDB(ctx).GetContext(ctx, entity, statement, args...)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

func (dao *activationDAO) CountByLicense(ctx context.Context, licenseId string) (int64, error) {
	return dao.Count(ctx, map[string]interface{}{"license_id": licenseId})
}

// Touch refreshes last_seen_at and the reporting application version on
// repeat activation by the same device.
func (dao *activationDAO) Touch(ctx context.Context, id string, appVersion string) error {
	now := types.NewUnixTime(time.Now())
	_, err := dao.update(ctx, id, map[string]interface{}{
		"app_version":  appVersion,
		"last_seen_at": now,
		"updated_at":   now,
	})
	return err
}
