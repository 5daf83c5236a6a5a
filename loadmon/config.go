package loadmon

import (
	"time"
)

// Config load monitor configuration
type Config struct {
	// SampleInterval sampling cadence
	SampleInterval time.Duration `mapstructure:"sample_interval"`

	// SmoothingWindow number of recent samples in the moving average
	SmoothingWindow int `mapstructure:"smoothing_window"`

	// ActiveOpsCapacity nominal capacity for active operation count
	ActiveOpsCapacity int64 `mapstructure:"active_ops_capacity"`

	// QueueCapacity nominal capacity for queue depth
	QueueCapacity int64 `mapstructure:"queue_capacity"`

	// Weights of the composite score components; normalized at Validate
	CPUWeight       float64 `mapstructure:"cpu_weight"`
	MemoryWeight    float64 `mapstructure:"memory_weight"`
	ActiveOpsWeight float64 `mapstructure:"active_ops_weight"`
	QueueWeight     float64 `mapstructure:"queue_weight"`

	// Thresholds composite score boundaries between levels
	HighLoadThreshold  float64 `mapstructure:"high_load_threshold"`
	CriticalThreshold  float64 `mapstructure:"critical_threshold"`
	EmergencyThreshold float64 `mapstructure:"emergency_threshold"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		SampleInterval:     5 * time.Second,
		SmoothingWindow:    3,
		ActiveOpsCapacity:  200,
		QueueCapacity:      100,
		CPUWeight:          0.3,
		MemoryWeight:       0.2,
		ActiveOpsWeight:    0.25,
		QueueWeight:        0.25,
		HighLoadThreshold:  0.40,
		CriticalThreshold:  0.70,
		EmergencyThreshold: 0.90,
	}
}

// Validate validates and normalizes the configuration
func (c *Config) Validate() error {
	if c.SampleInterval <= 0 {
		c.SampleInterval = 5 * time.Second
	}
	if c.SmoothingWindow <= 0 {
		c.SmoothingWindow = 3
	}
	if c.ActiveOpsCapacity <= 0 {
		c.ActiveOpsCapacity = 200
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 100
	}

	total := c.CPUWeight + c.MemoryWeight + c.ActiveOpsWeight + c.QueueWeight
	if total <= 0 {
		return &ValidationError{Field: "weights", Message: "at least one weight must be > 0"}
	}
	// Normalize so the composite score stays in 0..1
	c.CPUWeight /= total
	c.MemoryWeight /= total
	c.ActiveOpsWeight /= total
	c.QueueWeight /= total

	if c.HighLoadThreshold <= 0 || c.HighLoadThreshold >= 1 {
		return &ValidationError{Field: "high_load_threshold", Message: "must be in (0, 1)"}
	}
	if c.CriticalThreshold <= c.HighLoadThreshold {
		return &ValidationError{Field: "critical_threshold", Message: "must be > high_load_threshold"}
	}
	if c.EmergencyThreshold <= c.CriticalThreshold {
		return &ValidationError{Field: "emergency_threshold", Message: "must be > critical_threshold"}
	}

	return nil
}

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "loadmon config validation failed for field '" + e.Field + "': " + e.Message
}
