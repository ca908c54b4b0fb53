package exphewas

import (
	"fmt"
	"time"
)

// DefaultBaseURL is the public ExPheWAS REST endpoint
const DefaultBaseURL = "https://exphewas.statgen.org/v1/api"

// ClientConfig holds configuration for the ExPheWAS client
type ClientConfig struct {
	BaseURL string `json:"base_url"`

	// Gene lookups are cheap; result and catalog downloads can be large
	ResolveTimeout time.Duration `json:"resolve_timeout"`
	FetchTimeout   time.Duration `json:"fetch_timeout"`

	RateLimitPerSecond float64 `json:"rate_limit_per_second"`
	Burst              int     `json:"burst"`

	UserAgent string `json:"user_agent"`
}

// DefaultClientConfig returns the timeouts used by the public service
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:            DefaultBaseURL,
		ResolveTimeout:     30 * time.Second,
		FetchTimeout:       60 * time.Second,
		RateLimitPerSecond: 10,
		Burst:              4,
		UserAgent:          "phewasview/1.0",
	}
}

// Validate checks if the configuration is valid
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return &ValidationError{Field: "BaseURL", Message: "is required"}
	}
	if c.ResolveTimeout <= 0 {
		return &ValidationError{Field: "ResolveTimeout", Message: "must be positive"}
	}
	if c.FetchTimeout <= 0 {
		return &ValidationError{Field: "FetchTimeout", Message: "must be positive"}
	}
	if c.RateLimitPerSecond <= 0 {
		return &ValidationError{Field: "RateLimitPerSecond", Message: "must be positive"}
	}
	if c.Burst <= 0 {
		return &ValidationError{Field: "Burst", Message: "must be positive"}
	}
	return nil
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}
