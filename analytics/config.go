package analytics

import "time"

// Config operation coordinator configuration
type Config struct {
	// Resource rate limit resource type charged per coordinated operation
	Resource string `mapstructure:"resource"`

	// OperationTimeout execution budget for one collaborator call
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`

	// EssentialOps operation types that stay admitted under Critical/Emergency
	EssentialOps []string `mapstructure:"essential_ops"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Resource:         "ml_operations",
		OperationTimeout: 30 * time.Second,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Resource == "" {
		c.Resource = "ml_operations"
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 30 * time.Second
	}
	for _, op := range c.EssentialOps {
		if op == "" {
			return &ValidationError{Field: "essential_ops", Message: "must not contain empty entries"}
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
	return "analytics config validation failed for field '" + e.Field + "': " + e.Message
}
