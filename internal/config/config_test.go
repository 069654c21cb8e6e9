package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/storefront/internal/config"
)

func TestNew(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("HTTP_CORS_ALLOWED_ORIGINS", "http://localhost:5173,https://shop.example.com")

	type Config struct {
		Log     config.Log
		HTTP    config.HTTP
		Auth    config.Auth
		Storage config.Storage
		Kafka   config.Kafka
	}

	cfg, err := config.New[Config]()
	require.NoError(t, err)

	assert.Equal(t, config.LogFormatText, cfg.Log.Format)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, uint32(8000), cfg.HTTP.Port)
	assert.True(t, cfg.HTTP.ValidateRequests)
	assert.Equal(t, []string{"http://localhost:5173", "https://shop.example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, config.StorageDriverMemory, cfg.Storage.Driver)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestNewMissingRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	type Config struct {
		Auth config.Auth
	}

	_, err := config.New[Config]()
	assert.Error(t, err)
}

func TestNewPostgresDefaults(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "secret")

	cfg, err := config.New[config.Postgres]()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "storefront", cfg.DB)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, int32(10), cfg.MaxConns)

	t.Setenv("POSTGRES_HOST", "")
	_, err = config.New[config.Postgres]()
	assert.Error(t, err)
}

func TestStorageDriverUnmarshalText(t *testing.T) {
	var d config.StorageDriver
	require.NoError(t, d.UnmarshalText([]byte("Postgres")))
	assert.Equal(t, config.StorageDriverPostgres, d)

	assert.Error(t, d.UnmarshalText([]byte("sqlite")))
}

func TestLogFormatUnmarshalText(t *testing.T) {
	var f config.LogFormat
	require.NoError(t, f.UnmarshalText([]byte(" tint ")))
	assert.Equal(t, config.LogFormatText, f)

	require.NoError(t, f.UnmarshalText([]byte("json")))
	assert.Equal(t, config.LogFormatJSON, f)

	assert.Error(t, f.UnmarshalText([]byte("xml")))
	assert.Equal(t, "LogFormat(7)", config.LogFormat(7).String())
}
