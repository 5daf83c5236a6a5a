package updates

import (
	"time"
)

// Config update pipeline configuration
type Config struct {
	// SignificanceThreshold relative fingerprint delta required by the
	// DataChange trigger (0.10 = 10%)
	SignificanceThreshold float64 `mapstructure:"significance_threshold"`

	// SystemEventMinInterval minimum spacing for SystemEvent triggers
	SystemEventMinInterval time.Duration `mapstructure:"system_event_min_interval"`

	// MLInsightCooldown per-key cooldown for MLInsight triggers
	MLInsightCooldown time.Duration `mapstructure:"ml_insight_cooldown"`

	// DefaultBaseInterval base re-check interval when no per-key override
	DefaultBaseInterval time.Duration `mapstructure:"default_base_interval"`

	// BaseIntervals per-module, per-update-type base intervals
	BaseIntervals map[string]map[string]time.Duration `mapstructure:"base_intervals"`

	// Multipliers mode multiplier table (each >= 1, increasing severity)
	Multipliers Multipliers `mapstructure:"multipliers"`

	// QueueCapacity bounded pending queue size
	QueueCapacity int `mapstructure:"queue_capacity"`

	// DispatchTimeout execution budget for one callback invocation
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`

	// PollInterval dispatcher idle sleep when nothing is due
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// HistorySize bounded update record ring size
	HistorySize int `mapstructure:"history_size"`

	// CallbackPoolSize worker pool size for callback invocations
	CallbackPoolSize int `mapstructure:"callback_pool_size"`
}

// Multipliers per-mode interval multipliers
//
// Emergency has no multiplier: non-essential scheduling is suspended there,
// essential modules fall back to the Critical multiplier
type Multipliers struct {
	Normal   float64 `mapstructure:"normal"`
	HighLoad float64 `mapstructure:"high_load"`
	Critical float64 `mapstructure:"critical"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		SignificanceThreshold:  0.10,
		SystemEventMinInterval: 60 * time.Second,
		MLInsightCooldown:      300 * time.Second,
		DefaultBaseInterval:    30 * time.Second,
		BaseIntervals:          make(map[string]map[string]time.Duration),
		Multipliers:            Multipliers{Normal: 1.0, HighLoad: 1.5, Critical: 3.0},
		QueueCapacity:          100,
		DispatchTimeout:        10 * time.Second,
		PollInterval:           50 * time.Millisecond,
		HistorySize:            100,
		CallbackPoolSize:       16,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SignificanceThreshold < 0 || c.SignificanceThreshold > 1 {
		return &ValidationError{Field: "significance_threshold", Message: "must be in [0, 1]"}
	}
	if c.SignificanceThreshold == 0 {
		c.SignificanceThreshold = 0.10
	}
	if c.SystemEventMinInterval <= 0 {
		c.SystemEventMinInterval = 60 * time.Second
	}
	if c.MLInsightCooldown <= 0 {
		c.MLInsightCooldown = 300 * time.Second
	}
	if c.DefaultBaseInterval <= 0 {
		c.DefaultBaseInterval = 30 * time.Second
	}
	for moduleID, byType := range c.BaseIntervals {
		for updateType, d := range byType {
			if d <= 0 {
				return &ValidationError{
					Field:   "base_intervals." + moduleID + "." + updateType,
					Message: "must be > 0",
				}
			}
		}
	}

	if c.Multipliers.Normal == 0 && c.Multipliers.HighLoad == 0 && c.Multipliers.Critical == 0 {
		c.Multipliers = Multipliers{Normal: 1.0, HighLoad: 1.5, Critical: 3.0}
	}
	if c.Multipliers.Normal < 1 {
		return &ValidationError{Field: "multipliers.normal", Message: "must be >= 1"}
	}
	if c.Multipliers.HighLoad < c.Multipliers.Normal {
		return &ValidationError{Field: "multipliers.high_load", Message: "must be >= multipliers.normal"}
	}
	if c.Multipliers.Critical < c.Multipliers.HighLoad {
		return &ValidationError{Field: "multipliers.critical", Message: "must be >= multipliers.high_load"}
	}

	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 100
	}
	if c.DispatchTimeout <= 0 {
		c.DispatchTimeout = 10 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 50 * time.Millisecond
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 100
	}
	if c.CallbackPoolSize <= 0 {
		c.CallbackPoolSize = 16
	}

	return nil
}

// BaseInterval resolves the base interval for a key
func (c *Config) BaseInterval(moduleID, updateType string) time.Duration {
	if byType, ok := c.BaseIntervals[moduleID]; ok {
		if d, ok := byType[updateType]; ok {
			return d
		}
	}
	return c.DefaultBaseInterval
}

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "updates config validation failed for field '" + e.Field + "': " + e.Message
}
