package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadDefaultsWithRequiredDatabase(t *testing.T) {
	cfg, err := load("", envFrom(map[string]string{
		"DATABASE_URL": "postgres://localhost/shop",
		"JWT_SECRET":   "s3cret",
	}))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/shop", cfg.Database.URL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 3600, cfg.Auth.TokenTTLSeconds)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Jobs.LowStockInterval)
	assert.Equal(t, 10, cfg.Jobs.LowStockThreshold)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := load("", envFrom(nil))
	assert.EqualError(t, err, "DATABASE_URL environment variable is required")
}

func TestLoadGeneratesSecret(t *testing.T) {
	cfg, err := load("", envFrom(map[string]string{"DATABASE_URL": "postgres://localhost/shop"}))

	require.NoError(t, err)
	assert.Len(t, cfg.Auth.JWTSecret, 32)
}

func TestLoadJWKSURL(t *testing.T) {
	cfg, err := load("", envFrom(map[string]string{
		"DATABASE_URL": "postgres://localhost/shop",
		"JWKS_URL":     "https://idp.example.com/.well-known/jwks.json",
	}))

	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/.well-known/jwks.json", cfg.Auth.JWKSURL)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.toml")
	content := `
[server]
port = 9090
shutdown_timeout = "5s"

[database]
url = "postgres://file/shop"
max_conns = 4

[auth]
jwt_secret = "from-file"

[redis]
enabled = false

[minio]
bucket = "catalog"

[jobs]
low_stock_interval = "2m"
low_stock_threshold = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := load(path, envFrom(map[string]string{
		"PORT":                "7070",
		"LOW_STOCK_THRESHOLD": "7",
	}))

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres://file/shop", cfg.Database.URL)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "catalog", cfg.Minio.Bucket)
	assert.Equal(t, 2*time.Minute, cfg.Jobs.LowStockInterval)
	assert.Equal(t, 7, cfg.Jobs.LowStockThreshold)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port not a number", map[string]string{"PORT": "http"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"ssl flag", map[string]string{"MINIO_USE_SSL": "maybe"}},
		{"ttl zero", map[string]string{"JWT_TTL_SECONDS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.env["DATABASE_URL"] = "postgres://localhost/shop"
			_, err := load("", envFrom(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "absent.toml"), envFrom(map[string]string{"DATABASE_URL": "x"}))
	assert.ErrorContains(t, err, "failed to load config file")
}
