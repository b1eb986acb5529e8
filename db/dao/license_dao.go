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

type licenseDAO struct {
	*DAO[entities.License]
}

func NewLicenseDAO(db *sqlx.DB) LicenseDAO {
	return &licenseDAO{
		DAO: NewDAO[entities.License]("licenses", db),
	}
}

func (dao *licenseDAO) GetByKeyHash(ctx context.Context, keyHash string) (*entities.License, error) {
	return dao.selectByField(ctx, "key_hash", keyHash)
}

// GetForUpdate locks the license row for the duration of the surrounding
// transaction. Serializes concurrent activation attempts per license.
func (dao *licenseDAO) GetForUpdate(ctx context.Context, id string) (*entities.License, error) {
	statement, args := psql.Select("*").From(dao.table).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		MustSql()
	dao.debugSQL(statement, args)
	entity := new(entities.License)
	err := dao.UnsafeDB(ctx).GetContext(ctx, entity, statement, args...)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return entity, err
}

func (dao *licenseDAO) UpdateStatus(ctx context.Context, id string, status entities.LicenseStatus) error {
	_, err := dao.update(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_at": types.NewUnixTime(time.Now()),
	})
	return err
}

// TransitionStatus moves a license from one status to another, returning
// false without modification when the current status differs from the
// expected one. Guards the active → refunded transition against racing
// revokes.
func (dao *licenseDAO) TransitionStatus(ctx context.Context, id string, from, to entities.LicenseStatus) (bool, error) {
	statement, args := psql.Update(dao.table).
		Set("status", to).
		Set("updated_at", types.NewUnixTime(time.Now())).
		Where(sq.Eq{"id": id, "status": from}).
		MustSql()
	dao.debugSQL(statement, args)
	result, err := dao.DB(ctx).ExecContext(ctx, statement, args...)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	return rows > 0, err
}

func (dao *licenseDAO) ListByOrderRef(ctx context.Context, orderRef string) ([]*entities.License, error) {
	statement, args := psql.Select("*").From(dao.table).
		Where(sq.Eq{"order_ref": orderRef}).
		OrderBy("created_at DESC").
		MustSql()
	dao.debugSQL(statement, args)
	list := make([]*entities.License, 0)
	err := dao.UnsafeDB(ctx).SelectContext(ctx, &list, statement, args...)
	return list, err
}
