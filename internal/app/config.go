package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/accountsync/internal/data/db"
	"github.com/yungbote/accountsync/internal/data/housecache"
	"github.com/yungbote/accountsync/internal/modules/accounts"
	"github.com/yungbote/accountsync/internal/platform/registry"
)

type StoreConfig struct {
	Driver     string `env:"ACCOUNTSYNC_DB_DRIVER" envDefault:"postgres"`
	SQLitePath string `env:"ACCOUNTSYNC_SQLITE_PATH" envDefault:"accountsync.db"`
	Host       string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port       string `env:"POSTGRES_PORT" envDefault:"5432"`
	User       string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password   string `env:"POSTGRES_PASSWORD"`
	Name       string `env:"POSTGRES_NAME" envDefault:"accountsync"`
	SSLMode    string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	// AutoMigrate runs schema migration on startup.
	AutoMigrate bool `env:"ACCOUNTSYNC_AUTO_MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	HouseTTL time.Duration `env:"HOUSE_CACHE_TTL" envDefault:"15m"`
}

type RegistryConfig struct {
	BaseURL    string        `env:"REGISTRY_BASE_URL"`
	APIKey     string        `env:"REGISTRY_API_KEY"`
	Timeout    time.Duration `env:"REGISTRY_TIMEOUT" envDefault:"60s"`
	MaxRetries int           `env:"REGISTRY_MAX_RETRIES" envDefault:"3"`
	BatchSize  int           `env:"REGISTRY_IMPORT_BATCH" envDefault:"100"`
}

type Config struct {
	LogMode     string `env:"LOG_MODE" envDefault:"development"`
	Concurrency int    `env:"ACCOUNTSYNC_CONCURRENCY" envDefault:"4"`
	EdgePolicy  string `env:"ACCOUNTSYNC_EDGE_POLICY" envDefault:"append-only"`

	Store    StoreConfig
	Redis    RedisConfig
	Registry RegistryConfig
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("ACCOUNTSYNC_CONCURRENCY must be >= 1, got %d", c.Concurrency)
	}
	if _, err := accounts.ParseEdgePolicy(c.EdgePolicy); err != nil {
		return fmt.Errorf("ACCOUNTSYNC_EDGE_POLICY: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Store.Driver)) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("ACCOUNTSYNC_DB_DRIVER: unsupported driver %q", c.Store.Driver)
	}
	if c.Registry.MaxRetries < 0 {
		return fmt.Errorf("REGISTRY_MAX_RETRIES must be >= 0")
	}
	if c.Registry.BatchSize <= 0 {
		return fmt.Errorf("REGISTRY_IMPORT_BATCH must be > 0")
	}
	return nil
}

func (c Config) DB() db.Config {
	return db.Config{
		Driver:     c.Store.Driver,
		Host:       c.Store.Host,
		Port:       c.Store.Port,
		User:       c.Store.User,
		Password:   c.Store.Password,
		Name:       c.Store.Name,
		SSLMode:    c.Store.SSLMode,
		SQLitePath: c.Store.SQLitePath,
	}
}

func (c Config) HouseCache() housecache.Config {
	return housecache.Config{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TTL:      c.Redis.HouseTTL,
	}
}

func (c Config) RegistryClient() registry.Config {
	return registry.Config{
		BaseURL:    c.Registry.BaseURL,
		APIKey:     c.Registry.APIKey,
		Timeout:    c.Registry.Timeout,
		MaxRetries: c.Registry.MaxRetries,
		BatchSize:  c.Registry.BatchSize,
	}
}
