package housecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/accountsync/internal/platform/logger"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

const (
	defaultTTL    = 15 * time.Minute
	defaultPrefix = "accountsync:house:"
)

// Fetcher loads a house catalogue from the registry.
type Fetcher interface {
	ExportHouse(ctx context.Context, fiasHouseGUID string) (*registry.HouseExportResult, error)
}

// Cache returns house catalogues, fetching each building at most once per TTL.
type Cache interface {
	Get(ctx context.Context, fiasHouseGUID string) (*registry.HouseExportResult, error)
	Invalidate(ctx context.Context, fiasHouseGUID string) error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, cfg Config) (*goredis.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

type houseCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	fetch  Fetcher
	ttl    time.Duration
	prefix string
	group  singleflight.Group
}

// New wraps fetch with a Redis-backed cache. A nil rdb disables storage but
// still collapses concurrent fetches of the same house.
func New(log *logger.Logger, rdb *goredis.Client, fetch Fetcher, cfg Config) (Cache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if fetch == nil {
		return nil, fmt.Errorf("fetcher required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &houseCache{
		log:    log.With("component", "HouseCache"),
		rdb:    rdb,
		fetch:  fetch,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

func (c *houseCache) key(fias string) string {
	return c.prefix + strings.ToLower(strings.TrimSpace(fias))
}

func (c *houseCache) Get(ctx context.Context, fiasHouseGUID string) (*registry.HouseExportResult, error) {
	fias := strings.TrimSpace(fiasHouseGUID)
	if fias == "" {
		return nil, fmt.Errorf("missing fias house guid")
	}
	if house, ok := c.lookup(ctx, fias); ok {
		return house, nil
	}
	// The shared fetch outlives any one caller; each caller still stops waiting on its own ctx.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(c.key(fias), func() (any, error) {
		house, err := c.fetch.ExportHouse(fetchCtx, fias)
		if err != nil {
			return nil, err
		}
		c.store(fetchCtx, fias, house)
		return house, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("House fetch shared", "fias_house_guid", fias)
		}
		return res.Val.(*registry.HouseExportResult), nil
	}
}

func (c *houseCache) lookup(ctx context.Context, fias string) (*registry.HouseExportResult, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.key(fias)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("House cache read failed", "fias_house_guid", fias, "error", err)
		return nil, false
	}
	var house registry.HouseExportResult
	if err := json.Unmarshal(raw, &house); err != nil {
		c.log.Warn("House cache entry unreadable", "fias_house_guid", fias, "error", err)
		return nil, false
	}
	return &house, true
}

func (c *houseCache) store(ctx context.Context, fias string, house *registry.HouseExportResult) {
	if c.rdb == nil || house == nil {
		return
	}
	raw, err := json.Marshal(house)
	if err != nil {
		c.log.Warn("House cache encode failed", "fias_house_guid", fias, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.key(fias), raw, c.ttl).Err(); err != nil {
		c.log.Warn("House cache write failed", "fias_house_guid", fias, "error", err)
	}
}

func (c *houseCache) Invalidate(ctx context.Context, fiasHouseGUID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key(fiasHouseGUID)).Err()
}
