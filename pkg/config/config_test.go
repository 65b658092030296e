package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("HYPIXEL_CACHE_SECRET", "s3cret")
	t.Setenv("HYPIXEL_API_KEY", "key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, BackendRedis, cfg.CacheBackend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.AwaitWrites)
	assert.False(t, cfg.Coalesce)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HYPIXEL_CACHE_SECRET", "s3cret")
	t.Setenv("HYPIXEL_CACHE_API_KEY", "prefixed-key")
	t.Setenv("HYPIXEL_API_KEY", "legacy-key")
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_URL", "redis://cache:6380/2")
	t.Setenv("HYPIXEL_CACHE_CACHE_BACKEND", "memory")
	t.Setenv("HYPIXEL_CACHE_LOOKUP_COALESCE", "true")
	t.Setenv("HYPIXEL_CACHE_HTTP_TIMEOUT", "3s")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Secret)
	assert.Equal(t, "prefixed-key", cfg.APIKey, "prefixed name wins")
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "redis://cache:6380/2", cfg.RedisURL)
	assert.Equal(t, BackendMemory, cfg.CacheBackend)
	assert.True(t, cfg.Coalesce)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
}

func TestLoad_File(t *testing.T) {
	setRequired(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 6000
cache:
  backend: memory
  prefix: "hc:"
log:
  level: debug
  pretty: true
lookup:
  await_writes: true
`), 0o600))

	v := New()
	require.NoError(t, ReadFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, BackendMemory, cfg.CacheBackend)
	assert.Equal(t, "hc:", cfg.CachePrefix)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.True(t, cfg.AwaitWrites)
}

func TestReadFile(t *testing.T) {
	assert.NoError(t, ReadFile(New(), ""))
	assert.Error(t, ReadFile(New(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:         5000,
			RedisURL:     "localhost:6379",
			Secret:       "s",
			APIKey:       "k",
			CacheBackend: BackendRedis,
			LogLevel:     "info",
			HTTPTimeout:  time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Secret = "" }, "secret is required"},
		{"missing api key", func(c *Config) { c.APIKey = "" }, "api_key is required"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "port"},
		{"bad backend", func(c *Config) { c.CacheBackend = "memcached" }, "unknown backend"},
		{"bad redis url", func(c *Config) { c.RedisURL = "http://nope" }, "redis_url"},
		{"memory ignores redis url", func(c *Config) { c.CacheBackend = BackendMemory; c.RedisURL = "" }, ""},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log.level"},
		{"bad timeout", func(c *Config) { c.HTTPTimeout = 0 }, "http.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRedisOptions(t *testing.T) {
	opts, err := RedisOptions("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = RedisOptions("redis://:pw@cache:6380/3")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = RedisOptions("")
	assert.Error(t, err)
}
