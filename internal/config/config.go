package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "config/config.yaml"

// GarminConfig holds upstream credentials and session settings.
type GarminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	UseProxy bool   `yaml:"use_proxy"`
	Proxy    string `yaml:"proxy" validate:"required_if=UseProxy true,omitempty,url"`

	// CacheTTL is in seconds, matching the historical config.yaml layout.
	CacheTTL int `yaml:"cache_ttl" validate:"gte=0"`

	MaxRetries int           `yaml:"max_retries" validate:"gte=1,lte=10"`
	RetryDelay time.Duration `yaml:"retry_delay" validate:"gte=0"`
	Timeout    time.Duration `yaml:"timeout" validate:"gte=0"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string `yaml:"backend" validate:"oneof=file redis memory"`
	Dir       string `yaml:"dir" validate:"required_if=Backend file"`
	RedisAddr string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB   int    `yaml:"redis_db" validate:"gte=0"`
}

// ServerConfig configures the HTTP read API.
type ServerConfig struct {
	Port string `yaml:"port" validate:"required,numeric"`
}

// SchedulerConfig configures the cache warmer. Zero disables it.
type SchedulerConfig struct {
	WarmInterval time.Duration `yaml:"warm_interval" validate:"gte=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

type AppConfig struct {
	Garmin    GarminConfig    `yaml:"garmin"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// TTL returns the cache time-to-live.
func (c *AppConfig) TTL() time.Duration {
	return time.Duration(c.Garmin.CacheTTL) * time.Second
}

// ProxyURL returns the proxy to use, or "" for a direct connection.
func (c *AppConfig) ProxyURL() string {
	if c.Garmin.UseProxy {
		return c.Garmin.Proxy
	}
	return ""
}

// Default returns the configuration used when nothing is set.
func Default() *AppConfig {
	return &AppConfig{
		Garmin: GarminConfig{
			CacheTTL:   3600,
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			Timeout:    30 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "file",
			Dir:     "cache",
		},
		Server:    ServerConfig{Port: "8080"},
		Scheduler: SchedulerConfig{WarmInterval: 0},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

var validate = validator.New()

// Load reads configuration with sensible defaults: a .env file if present,
// then the YAML file at path (missing is fine unless path was explicit),
// then environment overrides.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = getenvDefault("KFIT_CONFIG", DefaultPath)
	}
	if err := loadFile(cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.Garmin.Email = getenvDefault("GARMIN_EMAIL", cfg.Garmin.Email)
	cfg.Garmin.Password = getenvDefault("GARMIN_PASSWORD", cfg.Garmin.Password)
	cfg.Garmin.BaseURL = getenvDefault("GARMIN_BASE_URL", cfg.Garmin.BaseURL)
	if proxy := os.Getenv("GARMIN_PROXY"); proxy != "" {
		cfg.Garmin.UseProxy = true
		cfg.Garmin.Proxy = proxy
	}
	cfg.Garmin.MaxRetries = getenvInt("GARMIN_MAX_RETRIES", cfg.Garmin.MaxRetries)

	if v := os.Getenv("CACHE_TTL"); v != "" {
		ttl, err := parseTTL(v)
		if err != nil {
			return err
		}
		cfg.Garmin.CacheTTL = ttl
	}
	cfg.Cache.Backend = getenvDefault("CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.Dir = getenvDefault("CACHE_DIR", cfg.Cache.Dir)
	cfg.Cache.RedisAddr = getenvDefault("REDIS_ADDR", cfg.Cache.RedisAddr)

	cfg.Server.Port = getenvDefault("PORT", cfg.Server.Port)

	if v := os.Getenv("WARM_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid WARM_INTERVAL: %w", err)
		}
		cfg.Scheduler.WarmInterval = interval
	}

	cfg.Log.Level = getenvDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenvDefault("LOG_FORMAT", cfg.Log.Format)
	return nil
}

// parseTTL reads CACHE_TTL in whole seconds, like garmin.cache_ttl.
// A Go duration ("1h", "90s") is also accepted if it is a whole number of seconds.
func parseTTL(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid CACHE_TTL %q: want seconds or a duration such as 1h", v)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("invalid CACHE_TTL %q: must be a whole number of seconds", v)
	}
	return int(d / time.Second), nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
