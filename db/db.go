package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/keymint-io/keymint/config"
	"github.com/keymint-io/keymint/db/dao"
	"github.com/keymint-io/keymint/db/transaction"
)

type DB struct {
	DB  *sqlx.DB
	log *zap.SugaredLogger

	Licenses    dao.LicenseDAO
	Activations dao.ActivationDAO
}

func NewSqlDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(int(cfg.MaxPoolSize))
	db.SetMaxIdleConns(int(cfg.MaxPoolSize))
	db.SetConnMaxLifetime(time.Second * time.Duration(cfg.MaxLifetime))
	return db, nil
}

func NewDB(sqlDB *sql.DB, log *zap.SugaredLogger) (*DB, error) {
	sqlxDB := sqlx.NewDb(sqlDB, "pgx")

	db := &DB{
		DB:          sqlxDB,
		log:         log,
		Licenses:    dao.NewLicenseDAO(sqlxDB),
		Activations: dao.NewActivationDAO(sqlxDB),
	}

	return db, nil
}

func (db *DB) Ping() error {
	return db.DB.Ping()
}

func (db *DB) Stats() map[string]interface{} {
	stats := db.DB.Stats()
	return map[string]interface{}{
		"database.total_connections":  stats.OpenConnections,
		"database.active_connections": stats.InUse,
	}
}

// TX runs fn inside a transaction carried through the context; DAOs pick it
// up via transaction.FromContext. Rolls back on error or panic.
func (db *DB) TX(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := db.DB.Beginx()
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			db.log.Errorf("panic recovered: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Errorf("failed to rollback the tx: %v", rbErr)
			}
			panic(err)
		}
	}()

	ctx = transaction.WithTx(ctx, tx)

	err = fn(ctx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrap(err, rbErr.Error())
		}
		return err
	}

	return tx.Commit()
}

func (db *DB) Truncate(table string) error {
	sql := fmt.Sprintf("DELETE FROM %s", table)
	_, err := db.DB.Exec(sql)
	return err
}

func (db *DB) SqlDB() *sql.DB {
	return db.DB.DB
}

func (db *DB) Close() error {
	return db.DB.Close()
}
