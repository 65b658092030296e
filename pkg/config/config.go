// Package config loads the service configuration from flags, environment and
// an optional YAML file using viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/hypixel-cache/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "HYPIXEL_CACHE"

// Configuration keys.
const (
	KeyPort             = "port"
	KeyRedisURL         = "redis_url"
	KeySecret           = "secret"
	KeyAPIKey           = "api_key"
	KeyCacheBackend     = "cache.backend"
	KeyCachePrefix      = "cache.prefix"
	KeyLogLevel         = "log.level"
	KeyLogPretty        = "log.pretty"
	KeyAwaitWrites      = "lookup.await_writes"
	KeyCoalesce         = "lookup.coalesce"
	KeyMojangBaseURL    = "mojang.base_url"
	KeyHypixelBaseURL   = "hypixel.base_url"
	KeyHTTPTimeout      = "http.timeout"
	KeyShutdownTimeout  = "http.shutdown_timeout"
	KeyRateLimitEnabled = "ratelimit.enabled"
)

// Cache backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the resolved service configuration.
type Config struct {
	Port     int
	RedisURL string
	Secret   string
	APIKey   string

	CacheBackend string
	CachePrefix  string

	LogLevel  string
	LogPretty bool

	AwaitWrites bool
	Coalesce    bool

	MojangBaseURL  string
	HypixelBaseURL string

	HTTPTimeout     time.Duration
	ShutdownTimeout time.Duration

	RateLimitEnabled bool
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyPort, 5000)
	v.SetDefault(KeyRedisURL, "redis://localhost:6379")
	v.SetDefault(KeyCacheBackend, BackendRedis)
	v.SetDefault(KeyCachePrefix, "")
	v.SetDefault(KeyLogLevel, string(logging.LevelInfo))
	v.SetDefault(KeyLogPretty, false)
	v.SetDefault(KeyAwaitWrites, false)
	v.SetDefault(KeyCoalesce, false)
	v.SetDefault(KeyMojangBaseURL, "")
	v.SetDefault(KeyHypixelBaseURL, "")
	v.SetDefault(KeyHTTPTimeout, 10*time.Second)
	v.SetDefault(KeyShutdownTimeout, 15*time.Second)
	v.SetDefault(KeyRateLimitEnabled, true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names are accepted for deployments that predate the prefix.
	_ = v.BindEnv(KeyPort, EnvPrefix+"_PORT", "PORT")
	_ = v.BindEnv(KeyRedisURL, EnvPrefix+"_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv(KeyAPIKey, EnvPrefix+"_API_KEY", "HYPIXEL_API_KEY")

	return v
}

// ReadFile merges the YAML file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:             v.GetInt(KeyPort),
		RedisURL:         v.GetString(KeyRedisURL),
		Secret:           v.GetString(KeySecret),
		APIKey:           v.GetString(KeyAPIKey),
		CacheBackend:     strings.ToLower(v.GetString(KeyCacheBackend)),
		CachePrefix:      v.GetString(KeyCachePrefix),
		LogLevel:         v.GetString(KeyLogLevel),
		LogPretty:        v.GetBool(KeyLogPretty),
		AwaitWrites:      v.GetBool(KeyAwaitWrites),
		Coalesce:         v.GetBool(KeyCoalesce),
		MojangBaseURL:    v.GetString(KeyMojangBaseURL),
		HypixelBaseURL:   v.GetString(KeyHypixelBaseURL),
		HTTPTimeout:      v.GetDuration(KeyHTTPTimeout),
		ShutdownTimeout:  v.GetDuration(KeyShutdownTimeout),
		RateLimitEnabled: v.GetBool(KeyRateLimitEnabled),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%s: %d out of range", KeyPort, c.Port))
	}
	if c.Secret == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeySecret))
	}
	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyAPIKey))
	}
	switch c.CacheBackend {
	case BackendRedis:
		if _, err := RedisOptions(c.RedisURL); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyRedisURL, err))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown backend %q", KeyCacheBackend, c.CacheBackend))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyHTTPTimeout))
	}

	return errors.Join(errs...)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// RedisOptions parses a redis:// or rediss:// URL. A bare host:port is
// accepted as well.
func RedisOptions(redisURL string) (*redis.Options, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	if !strings.Contains(redisURL, "://") {
		return &redis.Options{Addr: redisURL}, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}
