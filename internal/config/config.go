// Package config loads the application configuration: defaults, then an
// optional YAML file, then a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvGPTKey      = "GPT_CHAT_KEY"
	EnvGPTEndpoint = "GPT_CHAT_ENDPOINT"
	EnvGPTModel    = "GPT_CHAT_MODEL"
	EnvLogLevel    = "OTTOBREW_LOG_LEVEL"
	EnvHTTPAddr    = "OTTOBREW_HTTP_ADDR"
	EnvStorage     = "OTTOBREW_STORAGE"
	EnvRedisAddr   = "OTTOBREW_REDIS_ADDR"
	EnvRedisPass   = "OTTOBREW_REDIS_PASSWORD"
	EnvRedisDB     = "OTTOBREW_REDIS_DB"
	EnvChime       = "OTTOBREW_CHIME"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	HTTP     HTTPConfig    `yaml:"http"`
	Storage  StorageConfig `yaml:"storage"`
	AI       AIConfig      `yaml:"ai"`
	Brew     BrewConfig    `yaml:"brew"`
	Chime    ChimeConfig   `yaml:"chime"`
	Seed     bool          `yaml:"seed"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// AIConfig configures the recipe generator. Generation is disabled when
// the endpoint or key is empty.
type AIConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	BearerAuth bool          `yaml:"bearer_auth"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxTokens  int           `yaml:"max_tokens"`
}

// Enabled reports whether generation can be attempted.
func (a AIConfig) Enabled() bool {
	return a.Endpoint != "" && a.APIKey != ""
}

// BrewConfig configures countdowns and the supervisor.
type BrewConfig struct {
	Tick          time.Duration `yaml:"tick"`
	PausedNudge   time.Duration `yaml:"paused_nudge"`
	IdleReap      time.Duration `yaml:"idle_reap"`
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// ChimeConfig configures audio cues.
type ChimeConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
	DoneWAV string  `yaml:"done_wav"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel: "normal",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "ottobrew:",
			},
		},
		AI: AIConfig{
			Timeout:   30 * time.Second,
			MaxTokens: 800,
		},
		Brew: BrewConfig{
			Tick:          time.Second,
			PausedNudge:   2 * time.Minute,
			IdleReap:      30 * time.Minute,
			WatchInterval: 30 * time.Second,
		},
		Chime: ChimeConfig{
			Volume: 0.4,
		},
		Seed: true,
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicit path is an error. envFile is loaded with godotenv if present,
// without overriding variables already set.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvGPTKey, &c.AI.APIKey)
	str(EnvGPTEndpoint, &c.AI.Endpoint)
	str(EnvGPTModel, &c.AI.Model)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvHTTPAddr, &c.HTTP.Addr)
	str(EnvStorage, &c.Storage.Backend)
	str(EnvRedisAddr, &c.Storage.Redis.Addr)
	str(EnvRedisPass, &c.Storage.Redis.Password)

	if v, ok := lookup(EnvRedisDB); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		c.Storage.Redis.DB = db
	}
	if v, ok := lookup(EnvChime); ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvChime, err)
		}
		c.Chime.Enabled = on
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if c.Brew.Tick <= 0 {
		errs = append(errs, errors.New("brew.tick must be positive"))
	}
	if c.Brew.WatchInterval <= 0 {
		errs = append(errs, errors.New("brew.watch_interval must be positive"))
	}
	if c.Chime.Volume < 0 || c.Chime.Volume > 1 {
		errs = append(errs, errors.New("chime.volume must be within [0, 1]"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
