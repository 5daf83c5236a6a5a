package statusapi

import "time"

// Config status API configuration
type Config struct {
	// Enabled whether the HTTP surface is exposed at all
	Enabled bool `mapstructure:"enabled"`

	// Addr listen address
	Addr string `mapstructure:"addr"`

	// ReadTimeout HTTP read timeout
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout HTTP write timeout
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		Addr:         ":9181",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Addr == "" {
		c.Addr = ":9181"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return nil
}
