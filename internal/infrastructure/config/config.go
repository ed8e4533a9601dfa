// Package config provides configuration management using Viper.
// Values come from an optional config.yaml and are overridden by RETAGUARDA_* environment variables
// (RETAGUARDA_DATABASE_DSN overrides database.dsn).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "RETAGUARDA"

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the service.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// HTTPConfig holds server timeouts.
type HTTPConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects the storage driver.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	DSN              string        `mapstructure:"dsn"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	MaxConnLifetime  time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `mapstructure:"max_conn_idle_time"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	MigrationsPath   string        `mapstructure:"migrations_path"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// JWTConfig holds access token validation settings.
type JWTConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Secret  string        `mapstructure:"secret"`
	Issuer  string        `mapstructure:"issuer"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from the given file (or ./config.yaml, ./config/config.yaml)
// and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "retaguarda")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)

	v.SetDefault("storage.driver", DriverPostgres)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)
	v.SetDefault("database.statement_timeout", 30*time.Second)
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "retaguarda:")
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("jwt.enabled", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "retaguarda")
	v.SetDefault("jwt.ttl", 15*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// applyDefaults fills values that cannot be expressed as static defaults.
func applyDefaults(cfg *Config) {
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.App.IsDevelopment() && !cfg.Log.Development && cfg.Log.Level == "debug" {
		cfg.Log.Development = true
	}
	if cfg.JWT.Enabled && cfg.JWT.Secret == "" && cfg.App.IsDevelopment() {
		cfg.JWT.Secret = "dev-secret-change-me"
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("config: database.dsn is required for the %s driver", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}

	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("config: invalid app.port %d", c.App.Port)
	}
	if c.JWT.Enabled && c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required when jwt is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("config: redis.addr is required when redis is enabled")
	}
	return nil
}
