package mode

// Config mode controller configuration
type Config struct {
	// EscalateSamples K: consecutive samples required to move to a more
	// severe mode
	EscalateSamples int `mapstructure:"escalate_samples"`

	// RecoverSamples M: consecutive samples required to move to a less
	// severe mode; must be >= EscalateSamples to bias toward caution
	RecoverSamples int `mapstructure:"recover_samples"`

	// Modules registered module classes keyed by id
	Modules map[string]ModuleConfig `mapstructure:"modules"`
}

// ModuleConfig per-module-class configuration
type ModuleConfig struct {
	// Essential modules stay enabled under Critical/Emergency
	Essential bool `mapstructure:"essential"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		EscalateSamples: 3,
		RecoverSamples:  5,
		Modules:         make(map[string]ModuleConfig),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.EscalateSamples <= 0 {
		c.EscalateSamples = 3
	}
	if c.RecoverSamples <= 0 {
		c.RecoverSamples = 5
	}
	if c.RecoverSamples < c.EscalateSamples {
		return &ValidationError{
			Field:   "recover_samples",
			Message: "must be >= escalate_samples (hysteresis down is the cautious side)",
		}
	}
	for id := range c.Modules {
		if id == "" {
			return &ValidationError{Field: "modules", Message: "module id must not be empty"}
		}
	}
	return nil
}

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "mode config validation failed for field '" + e.Field + "': " + e.Message
}
