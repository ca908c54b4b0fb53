package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"phewasview/adapters/exphewas"
	"phewasview/domain/phewas"
	"phewasview/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	ExPheWAS exphewas.ClientConfig
	Load     LoadConfig
	Explore  ExploreConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port       string
	GinMode    string
	SessionTTL time.Duration
}

// LoadConfig bounds the per-load fan-out
type LoadConfig struct {
	MaxConcurrentGenes int
}

// ExploreConfig holds the defaults applied to table and plot requests
type ExploreConfig struct {
	DefaultLimit     int
	DefaultMetric    phewas.Metric
	DefaultThreshold float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		ExPheWAS: *loadExPheWASConfig(),
		Load: LoadConfig{
			MaxConcurrentGenes: getEnvIntOrDefault("MAX_CONCURRENT_GENES", 4),
		},
		Explore: ExploreConfig{
			DefaultLimit:     getEnvIntOrDefault("DEFAULT_LIMIT", 10),
			DefaultMetric:    phewas.Metric(strings.ToLower(getEnvOrDefault("DEFAULT_METRIC", "p"))),
			DefaultThreshold: getEnvFloatOrDefault("DEFAULT_THRESHOLD", 0.05),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:       getEnvOrDefault("PORT", "8080"),
		GinMode:    getEnvOrDefault("GIN_MODE", "debug"),
		SessionTTL: getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
	}
}

func loadExPheWASConfig() *exphewas.ClientConfig {
	cfg := exphewas.DefaultClientConfig()
	cfg.BaseURL = strings.TrimRight(getEnvOrDefault("EXPHEWAS_API_URL", cfg.BaseURL), "/")
	cfg.ResolveTimeout = getEnvDurationOrDefault("EXPHEWAS_RESOLVE_TIMEOUT", cfg.ResolveTimeout)
	cfg.FetchTimeout = getEnvDurationOrDefault("EXPHEWAS_FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.RateLimitPerSecond = getEnvFloatOrDefault("RATE_LIMIT_PER_SEC", cfg.RateLimitPerSecond)
	cfg.Burst = getEnvIntOrDefault("RATE_LIMIT_BURST", cfg.Burst)
	return cfg
}

func validateConfig(config *Config) error {
	if err := config.ExPheWAS.Validate(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if config.Load.MaxConcurrentGenes < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_GENES must be at least 1")
	}
	if config.Explore.DefaultLimit < 1 {
		return errors.ConfigInvalid("DEFAULT_LIMIT must be at least 1")
	}
	if !config.Explore.DefaultMetric.IsRecognized() {
		return errors.ConfigInvalid("DEFAULT_METRIC must be p or q")
	}
	if t := config.Explore.DefaultThreshold; t < 0 || t > 1 {
		return errors.ConfigInvalid("DEFAULT_THRESHOLD must be within [0, 1]")
	}
	if config.Server.SessionTTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
