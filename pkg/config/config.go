// Package config loads service configuration from defaults, an optional
// config.yaml and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names shared by the store and event sections
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultConfigPaths are searched for config.yaml when no path is given
var DefaultConfigPaths = []string{".", "./configs", "/etc/peoplerecords"}

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Events    EventsConfig    `mapstructure:"events"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	Environment     string        `mapstructure:"environment"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects the record store
type StoreConfig struct {
	Backend   string `mapstructure:"backend"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	URL string `mapstructure:"url"`
	// PrivateDB gives each development host its own Redis database
	PrivateDB bool `mapstructure:"private_db"`
}

// EventsConfig selects the change event transport
type EventsConfig struct {
	Backend       string `mapstructure:"backend"`
	ConsumerGroup string `mapstructure:"consumer_group"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"rps"`
	Burst             int     `mapstructure:"burst"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
	Encoding    string `mapstructure:"encoding"`
}

// Load loads configuration from environment variables and config files.
// configPaths overrides DefaultConfigPaths.
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if len(configPaths) == 0 {
		configPaths = DefaultConfigPaths
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	// Enable environment variable reading
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Try to read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, continue with env vars and defaults
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", "15s")
	// SSE streams stay open, so no write deadline by default
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "5s")

	// Store defaults
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.key_prefix", "peoplerecords")

	// Redis defaults
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.private_db", false)

	// Events defaults
	v.SetDefault("events.backend", BackendMemory)
	v.SetDefault("events.consumer_group", "peoplerecords")

	// Rate limit defaults
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.rps", 10)
	v.SetDefault("ratelimit.burst", 50)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.environment", "development")
	v.SetDefault("log.encoding", "console")
}

// validateConfig validates the loaded configuration
func validateConfig(cfg *Config) error {
	// Validate server config
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)
	cfg.Events.Backend = strings.ToLower(cfg.Events.Backend)
	validBackends := []string{BackendMemory, BackendRedis}
	if !contains(validBackends, cfg.Store.Backend) {
		return fmt.Errorf("invalid store backend: %s", cfg.Store.Backend)
	}
	if !contains(validBackends, cfg.Events.Backend) {
		return fmt.Errorf("invalid events backend: %s", cfg.Events.Backend)
	}

	// Validate Redis config
	if cfg.UsesRedis() && cfg.Redis.URL == "" {
		return fmt.Errorf("redis url cannot be empty when a redis backend is selected")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate limit rps must be positive")
		}
		if cfg.RateLimit.Burst < 1 {
			return fmt.Errorf("rate limit burst must be at least 1")
		}
	}

	// Validate log config
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, cfg.Log.Level) {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}

	validEncodings := []string{"json", "console"}
	if !contains(validEncodings, cfg.Log.Encoding) {
		return fmt.Errorf("invalid log encoding: %s", cfg.Log.Encoding)
	}

	return nil
}

// UsesRedis reports whether any component needs a Redis connection
func (c *Config) UsesRedis() bool {
	return c.Store.Backend == BackendRedis || c.Events.Backend == BackendRedis
}

// GetServerAddr returns the server address in host:port format
func (s *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction returns true if the environment is production
func (s *ServerConfig) IsProduction() bool {
	return strings.ToLower(s.Environment) == "production"
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
