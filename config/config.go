package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Compare CompareConfig `mapstructure:"compare"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ScraperConfig holds marketplace page fetching configuration
type ScraperConfig struct {
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	RandomDelay       time.Duration `mapstructure:"random_delay"`
}

// CompareConfig holds comparison run configuration
type CompareConfig struct {
	Workers int `mapstructure:"workers"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// IsDevelopment reports whether the server runs in development mode
func (c ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/komparator/")

	// Environment variable settings: KOMPARATOR_SCRAPER_MAX_RETRIES -> scraper.max_retries
	v.SetEnvPrefix("KOMPARATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads variables from ./.env without overriding the environment
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	// Scraper defaults
	v.SetDefault("scraper.user_agent", "")
	v.SetDefault("scraper.timeout", "30s")
	v.SetDefault("scraper.max_retries", 1)
	v.SetDefault("scraper.requests_per_second", 5.0)
	v.SetDefault("scraper.burst", 10)
	v.SetDefault("scraper.random_delay", "0s")

	// Compare defaults
	v.SetDefault("compare.workers", 4)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 64)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 7)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Compare.Workers < 1 {
		return fmt.Errorf("compare workers must be at least 1, got: %d", config.Compare.Workers)
	}

	if config.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper timeout must be positive, got: %s", config.Scraper.Timeout)
	}

	if config.Scraper.RequestsPerSecond <= 0 {
		return fmt.Errorf("scraper requests_per_second must be positive, got: %v", config.Scraper.RequestsPerSecond)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if _, err := zapcore.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log level %q is not valid: %w", config.Log.Level, err)
	}

	return nil
}
