package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"

	"github.com/keymint-io/keymint"
	"github.com/keymint-io/keymint/admin"
	"github.com/keymint-io/keymint/admin/api"
	"github.com/keymint-io/keymint/config"
	"github.com/keymint-io/keymint/db"
	"github.com/keymint-io/keymint/db/migrator"
	"github.com/keymint-io/keymint/eventbus"
	"github.com/keymint-io/keymint/mcache"
	"github.com/keymint-io/keymint/pkg/accesslog"
	"github.com/keymint-io/keymint/pkg/cache"
	"github.com/keymint-io/keymint/pkg/license"
	"github.com/keymint-io/keymint/pkg/log"
	"github.com/keymint-io/keymint/services/activation"
	"github.com/keymint-io/keymint/services/registry"
)

var (
	ErrApplicationStarted = errors.New("already started")
	ErrApplicationStopped = errors.New("already stopped")
)

type Application struct {
	nodeID string

	cfg *config.Config

	mux     sync.Mutex
	started bool

	stop chan struct{}

	log *zap.SugaredLogger
	db  *db.DB
	bus *eventbus.EventBus

	registry *registry.Registry
	engine   *activation.Engine
	admin    *admin.Admin
}

func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		nodeID: uuid.NewV4().String(),
		cfg:    cfg,
		stop:   make(chan struct{}),
	}

	err := app.initialize()
	if err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) initialize() error {
	cfg := app.cfg

	log, err := log.NewZapLogger(&cfg.Log)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log.Desugar())
	app.log = log

	// cache
	var c cache.Cache
	if cfg.Redis.IsEnabled() {
		c = cache.NewRedisCache(cfg.Redis.GetClient())
	}
	mcache.Set(mcache.NewMCache(&mcache.Options{
		L1Size: 1000,
		L1TTL:  time.Second * 10,
		L2:     c,
	}))

	sqlDB, err := db.NewSqlDB(cfg.Database)
	if err != nil {
		return err
	}

	app.bus = eventbus.NewEventBus(
		app.NodeID(),
		cfg.Database.GetDSN(),
		log, sqlDB)
	registerEventHandler(app.bus)

	db, err := db.NewDB(sqlDB, log)
	if err != nil {
		return err
	}
	app.db = db

	signer, err := license.NewSigner(cfg.License.PrivateKey)
	if err != nil {
		return err
	}
	verifier, err := license.NewVerifier(cfg.License.PublicKey)
	if err != nil {
		return err
	}

	app.registry = registry.NewRegistry(registry.Options{
		Licenses: db.Licenses,
		Signer:   signer,
		Verifier: verifier,
		EventBus: app.bus,
	})

	app.engine = activation.NewEngine(activation.Options{
		TX:          db,
		Registry:    app.registry,
		Licenses:    db.Licenses,
		Activations: db.Activations,
		DeviceLimit: cfg.License.DeviceLimit,
	})

	// admin
	if cfg.Admin.IsEnabled() {
		opts := api.Options{
			Config:    cfg,
			DB:        db,
			Registry:  app.registry,
			Activator: app.engine,
		}
		if cfg.AccessLog.Enabled {
			accessLogger, err := accesslog.NewAccessLogger("admin", accesslog.Options{
				File:    cfg.AccessLog.File,
				Format:  string(cfg.AccessLog.Format),
				Colored: cfg.AccessLog.Colored,
			})
			if err != nil {
				return err
			}
			opts.Middlewares = append(opts.Middlewares, accesslog.NewMiddleware(accessLogger))
		}
		api := api.NewAPI(opts)
		app.admin = admin.NewAdmin(cfg.Admin, api.Handler())
	}

	return nil
}

// registerEventHandler fans cluster events into the local bus. Remote
// invalidations must purge this node's L1; the publishing node already
// handled L2.
func registerEventHandler(bus *eventbus.EventBus) {
	bus.ClusteringSubscribe(eventbus.EventInvalidation, func(data []byte) {
		eventData := &eventbus.InvalidationData{}
		if err := json.Unmarshal(data, eventData); err != nil {
			zap.S().Errorf("failed to unmarshal event: %s", err)
			return
		}
		bus.Broadcast(eventbus.EventInvalidation, eventData)
	})
	bus.Subscribe(eventbus.EventInvalidation, func(data interface{}) {
		eventData := data.(*eventbus.InvalidationData)
		for _, key := range eventData.CacheKeys {
			mcache := mcache.Default()
			if err := mcache.InvalidateL1(context.TODO(), key); err != nil {
				zap.S().Errorf("failed to invalidate cache: key=%s %v", key, err)
			}
		}
	})
	bus.ClusteringSubscribe(eventbus.EventLicenseIssued, func(data []byte) {
		eventData := &eventbus.IssuedData{}
		if err := json.Unmarshal(data, eventData); err != nil {
			zap.S().Errorf("failed to unmarshal event: %s", err)
			return
		}
		bus.Broadcast(eventbus.EventLicenseIssued, eventData)
	})
}

func (app *Application) DB() *db.DB {
	return app.db
}

func (app *Application) Registry() *registry.Registry {
	return app.registry
}

func (app *Application) NodeID() string {
	return app.nodeID
}

func (app *Application) Config() *config.Config {
	return app.cfg
}

// Start starts application
func (app *Application) Start() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if app.started {
		return ErrApplicationStarted
	}

	m := migrator.New(app.cfg)
	version, dirty, err := m.Status()
	if errors.Is(err, migrate.ErrNilVersion) {
		return errors.New("database is not up to date. Run 'keymint db up' before starting")
	}
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d", version)
	}

	app.log.Infof("starting KeyMint %s", keymint.VERSION)

	if err := app.bus.Start(); err != nil {
		return err
	}
	if app.admin != nil {
		app.admin.Start()
	}

	app.started = true

	return nil
}

func (app *Application) Wait() {
	<-app.stop
}

// Stop stops application
func (app *Application) Stop() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if !app.started {
		return ErrApplicationStopped
	}

	app.log.Info("exiting")

	defer func() {
		app.log.Info("exit")
		_ = app.log.Sync()
	}()

	_ = app.bus.Stop()
	if app.admin != nil {
		_ = app.admin.Stop()
	}
	_ = app.db.Close()

	app.started = false
	app.stop <- struct{}{}

	return nil
}
