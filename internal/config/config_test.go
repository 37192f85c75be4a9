package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cartstore", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "@RocketShoes:cart", cfg.Storage.Key)
	assert.Equal(t, CatalogRemote, cfg.Catalog.Mode)
	assert.Zero(t, cfg.Storage.RedisTTL)
	assert.Empty(t, cfg.Notify.KafkaBrokers)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TTL", "72h")
	t.Setenv("CATALOG_TIMEOUT", "1500ms")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Storage.RedisDB)
	assert.Equal(t, 72*time.Hour, cfg.Storage.RedisTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Catalog.Timeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Notify.KafkaBrokers)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_PORT=9999\nCATALOG_MODE=embedded\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("CATALOG_MODE")
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.HTTP.Port)
	assert.Equal(t, CatalogEmbedded, cfg.Catalog.Mode)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REDIS_DB", "three")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Storage.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
}

func TestLoad_ZeroRequestTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REQUEST_TIMEOUT", "0s")

	_, err := Load()
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT must be positive")
}

func TestLoad_LogFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_FILE", "/var/log/cartstore.log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/cartstore.log", cfg.App.LogFile)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "floppy")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown STORAGE_DRIVER")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTP:    HTTPConfig{Port: "8080", RequestTimeout: time.Second, ShutdownTimeout: time.Second},
			Catalog: CatalogConfig{Mode: CatalogRemote, BaseURL: "http://localhost:3333", Timeout: time.Second},
			Storage: StorageConfig{Driver: DriverMemory, Key: "k"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown catalog mode", func(c *Config) { c.Catalog.Mode = "ftp" }},
		{"missing base url", func(c *Config) { c.Catalog.BaseURL = "" }},
		{"missing seed file", func(c *Config) { c.Catalog.Mode = CatalogEmbedded }},
		{"missing key", func(c *Config) { c.Storage.Key = "" }},
		{"missing port", func(c *Config) { c.HTTP.Port = "" }},
		{"missing sqlite path", func(c *Config) { c.Storage.Driver = DriverSQLite }},
		{"missing postgres dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }},
		{"missing redis addr", func(c *Config) { c.Storage.Driver = DriverRedis }},
		{"missing mongo uri", func(c *Config) { c.Storage.Driver = DriverMongo }},
		{"zero request timeout", func(c *Config) { c.HTTP.RequestTimeout = 0 }},
		{"negative shutdown timeout", func(c *Config) { c.HTTP.ShutdownTimeout = -time.Second }},
		{"zero catalog timeout", func(c *Config) { c.Catalog.Timeout = 0 }},
		{"negative redis ttl", func(c *Config) { c.Storage.RedisTTL = -time.Minute }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
