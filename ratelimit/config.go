package ratelimit

import (
	"time"
)

// Config rate limiter configuration
type Config struct {
	// Enabled whether to enforce limits (false means direct passthrough)
	Enabled bool `mapstructure:"enabled"`

	// EventBusBuffer event bus buffer size
	EventBusBuffer int `mapstructure:"event_bus_buffer"`

	// Resources per-resource-type limits; the key set is the full set of
	// resource types callers may name
	Resources map[string]ResourceConfig `mapstructure:"resources"`
}

// ResourceConfig resource-level configuration
type ResourceConfig struct {
	// Limit maximum admissions within one window
	Limit int64 `mapstructure:"limit"`

	// Window fixed window size
	Window time.Duration `mapstructure:"window"`
}

// DefaultConfig returns the default configuration
//
// The default resource set mirrors the downstream services the business
// modules talk to; deployments extend or override it via config
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		EventBusBuffer: 500,
		Resources: map[string]ResourceConfig{
			"email":            {Limit: 300, Window: time.Minute},
			"whatsapp":         {Limit: 100, Window: time.Minute},
			"api_calls":        {Limit: 1000, Window: time.Minute},
			"database_queries": {Limit: 5000, Window: time.Minute},
			"ml_operations":    {Limit: 60, Window: time.Minute},
			"file_operations":  {Limit: 500, Window: time.Minute},
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil // not enabled, verification not required
	}

	if c.EventBusBuffer <= 0 {
		c.EventBusBuffer = 500
	}

	if len(c.Resources) == 0 {
		return &ValidationError{Field: "resources", Message: "at least one resource type is required"}
	}

	for name, rc := range c.Resources {
		if name == "" {
			return &ValidationError{Field: "resources", Message: "resource name must not be empty"}
		}
		if rc.Limit <= 0 {
			return &ValidationError{Resource: name, Field: "limit", Message: "must be > 0"}
		}
		if rc.Window <= 0 {
			return &ValidationError{Resource: name, Field: "window", Message: "must be > 0"}
		}
	}

	return nil
}
