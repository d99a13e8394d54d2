package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Log      LogConfig
	Store    StoreConfig
	Coupons  CouponsConfig
	Referral ReferralConfig
	Notify   NotifyConfig
	Redis    RedisConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
type DBConfig struct {
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         int    `envconfig:"DB_PORT" default:"5432"`
	User         string `envconfig:"DB_USER" default:"postgres"`
	Password     string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name         string `envconfig:"DB_NAME" default:"panel_ledger"`
	SSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns     int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns     int    `envconfig:"DB_MIN_CONNS" default:"5"`
	ConnectRetry int    `envconfig:"DB_CONNECT_RETRIES" default:"5"`
	AutoMigrate  bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, sslMode(c.SSLMode))
	if c.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", c.MaxConns)
	}
	if c.MinConns > 0 {
		dsn += fmt.Sprintf("&pool_min_conns=%d", c.MinConns)
	}
	return dsn
}

func sslMode(mode string) string {
	if mode == "" {
		return "disable"
	}
	return mode
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// StoreConfig holds the resource store switch and the per-unit credit costs.
type StoreConfig struct {
	Enabled       bool  `envconfig:"STORE_ENABLED" default:"true"`
	CostCPU       int64 `envconfig:"STORE_COST_CPU" default:"100"`
	CostMemory    int64 `envconfig:"STORE_COST_MEMORY" default:"50"`
	CostDisk      int64 `envconfig:"STORE_COST_DISK" default:"25"`
	CostSlots     int64 `envconfig:"STORE_COST_SLOTS" default:"250"`
	CostPorts     int64 `envconfig:"STORE_COST_PORTS" default:"20"`
	CostBackups   int64 `envconfig:"STORE_COST_BACKUPS" default:"20"`
	CostDatabases int64 `envconfig:"STORE_COST_DATABASES" default:"20"`
}

// CouponsConfig holds the initial coupon settings. They can be changed at runtime
// through the settings endpoint; these values only seed the process on startup.
type CouponsConfig struct {
	Enabled               bool `envconfig:"COUPONS_ENABLED" default:"true"`
	AllowRepeatRedemption bool `envconfig:"COUPONS_ALLOW_REPEAT_REDEMPTION" default:"true"`
}

// ReferralConfig holds referral reward configuration.
type ReferralConfig struct {
	Reward   int64 `envconfig:"REFERRAL_REWARD" default:"250"`
	MaxCodes int   `envconfig:"REFERRAL_MAX_CODES" default:"5"`
}

// NotifyConfig holds notification worker configuration.
type NotifyConfig struct {
	Buffer       int    `envconfig:"NOTIFY_BUFFER" default:"256"`
	RedisChannel string `envconfig:"NOTIFY_REDIS_CHANNEL" default:"ledger:events"`
}

// RedisConfig holds the optional Redis connection used for event delivery.
// An empty address disables the Redis sink.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
