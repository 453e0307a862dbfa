package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/accountsync/internal/data/aggregates"
	"github.com/yungbote/accountsync/internal/data/db"
	"github.com/yungbote/accountsync/internal/data/housecache"
	"github.com/yungbote/accountsync/internal/modules/accounts"
	"github.com/yungbote/accountsync/internal/platform/logger"
	"github.com/yungbote/accountsync/internal/platform/registry"
	"github.com/yungbote/accountsync/internal/services/accountsync"
)

type App struct {
	Log  *logger.Logger
	DB   *gorm.DB
	Cfg  Config
	Sync *accountsync.Service

	store *db.Service
	redis *goredis.Client
}

// New wires the store, registry client, house cache and sync service.
// A registry base URL is only required when withRegistry is set.
func New(ctx context.Context, withRegistry bool) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := db.Open(log, cfg.DB())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init store: %w", err)
	}
	a := &App{Log: log, DB: store.DB(), Cfg: cfg, store: store}
	if cfg.Store.AutoMigrate {
		if err := store.AutoMigrateAll(); err != nil {
			a.Close()
			return nil, fmt.Errorf("store automigrate: %w", err)
		}
	}
	if !withRegistry {
		return a, nil
	}

	client, err := registry.NewClient(log, cfg.RegistryClient())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init registry client: %w", err)
	}
	if cfg.Redis.Addr != "" {
		rdb, err := housecache.Dial(ctx, cfg.HouseCache())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.redis = rdb
	} else {
		log.Info("REDIS_ADDR not set; house catalogues are fetched on every run")
	}
	houses, err := housecache.New(log, a.redis, client, cfg.HouseCache())
	if err != nil {
		a.Close()
		return nil, err
	}

	policy, err := accounts.ParseEdgePolicy(cfg.EdgePolicy)
	if err != nil {
		a.Close()
		return nil, err
	}
	agg := aggregates.NewAccountAggregate(aggregates.AccountAggregateDeps{
		Base:       aggregates.BaseDeps{DB: a.DB, Log: log},
		EdgePolicy: policy,
	})
	a.Sync, err = accountsync.New(accountsync.Deps{
		Log:         log,
		Accounts:    agg,
		Registry:    client,
		Houses:      houses,
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Migrate applies the store schema.
func (a *App) Migrate() error {
	if a == nil || a.store == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.store.AutoMigrateAll()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.Log != nil {
			a.Log.Warn("Store close failed", "error", err)
		}
		a.store = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
