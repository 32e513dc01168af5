package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/labstack/gommon/random"
)

// ConfigPathEnv names the optional TOML file read before environment overrides
const ConfigPathEnv = "STOREFRONT_CONFIG"

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	Jobs     JobsConfig     `toml:"jobs"`
}

type ServerConfig struct {
	Port            int           `toml:"port"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	CORSOrigins     []string      `toml:"cors_origins"`
}

type DatabaseConfig struct {
	URL             string        `toml:"url"`
	MaxConns        int32         `toml:"max_conns"`
	MaxConnLifetime time.Duration `toml:"max_conn_lifetime"`
	AutoMigrate     bool          `toml:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret       string        `toml:"jwt_secret"`
	TokenTTLSeconds int           `toml:"token_ttl_seconds"`
	JWKSURL         string        `toml:"jwks_url"`
	LoginRateLimit  int           `toml:"login_rate_limit"`
	LoginRateWindow time.Duration `toml:"login_rate_window"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinioConfig struct {
	Enabled   bool   `toml:"enabled"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

type JobsConfig struct {
	LowStockInterval  time.Duration `toml:"low_stock_interval"`
	LowStockThreshold int           `toml:"low_stock_threshold"`
}

// Default returns the development configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			MaxConns:    20,
			AutoMigrate: true,
		},
		Auth: AuthConfig{
			TokenTTLSeconds: 3600,
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
		},
		Redis: RedisConfig{
			Enabled: true,
			Addr:    "localhost:6379",
		},
		Minio: MinioConfig{
			Enabled:   true,
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "product-images",
		},
		Jobs: JobsConfig{
			LowStockInterval:  30 * time.Minute,
			LowStockThreshold: 10,
		},
	}
}

// Load reads the file named by STOREFRONT_CONFIG (if any), then applies
// environment overrides on top of it.
func Load() (*Config, error) {
	return load(os.Getenv(ConfigPathEnv), os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid token ttl %d", cfg.Auth.TokenTTLSeconds)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = b
		return nil
	}

	setString("DATABASE_URL", &c.Database.URL)
	setString("JWT_SECRET", &c.Auth.JWTSecret)
	setString("JWKS_URL", &c.Auth.JWKSURL)
	setString("REDIS_ADDR", &c.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Redis.Password)
	setString("MINIO_ENDPOINT", &c.Minio.Endpoint)
	setString("MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	setString("MINIO_SECRET_KEY", &c.Minio.SecretKey)
	setString("MINIO_BUCKET", &c.Minio.Bucket)

	for _, err := range []error{
		setInt("PORT", &c.Server.Port),
		setInt("JWT_TTL_SECONDS", &c.Auth.TokenTTLSeconds),
		setInt("REDIS_DB", &c.Redis.DB),
		setInt("LOW_STOCK_THRESHOLD", &c.Jobs.LowStockThreshold),
		setBool("MINIO_USE_SSL", &c.Minio.UseSSL),
		setBool("REDIS_ENABLED", &c.Redis.Enabled),
		setBool("MINIO_ENABLED", &c.Minio.Enabled),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
