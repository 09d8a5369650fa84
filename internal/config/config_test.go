package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_DSN", "SHUTDOWN_TIMEOUT_SECONDS", "BUSINESS_TIMEZONE", "REDIS_ADDR", "REGISTRY_CACHE_TTL_SECONDS", "LOG_LEVEL", "CUTOFF_ROLLOVER", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "America/Boise", cfg.BusinessTimezone)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.RegistryCacheTTL)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "always", cfg.CutoffRollover)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("BUSINESS_TIMEZONE", "America/Denver")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REGISTRY_CACHE_TTL_SECONDS", "notanumber")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CUTOFF_ROLLOVER", "same-week")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com,")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "America/Denver", cfg.BusinessTimezone)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.RegistryCacheTTL, "unparsable values fall back to the default")
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "same-week", cfg.CutoffRollover)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestFromEnv_BadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	assert.Equal(t, zerolog.InfoLevel, FromEnv().LogLevel)
}
