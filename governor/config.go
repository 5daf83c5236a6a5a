package governor

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/talentmesh/go-talentmesh-core/analytics"
	"github.com/talentmesh/go-talentmesh-core/loadmon"
	"github.com/talentmesh/go-talentmesh-core/mode"
	"github.com/talentmesh/go-talentmesh-core/ratelimit"
	"github.com/talentmesh/go-talentmesh-core/updates"
)

// Config aggregate configuration of the governance core
//
// 每个子包各自校验自己的配置；这里只做跨包的交叉校验
// （资源名、模块名的引用完整性），启动时一次性失败。
type Config struct {
	RateLimit   ratelimit.Config `mapstructure:"ratelimit"`
	LoadMonitor loadmon.Config   `mapstructure:"loadmon"`
	Mode        mode.Config      `mapstructure:"mode"`
	Updates     updates.Config   `mapstructure:"updates"`
	Analytics   analytics.Config `mapstructure:"analytics"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		RateLimit:   ratelimit.DefaultConfig(),
		LoadMonitor: loadmon.DefaultConfig(),
		Mode:        mode.DefaultConfig(),
		Updates:     updates.DefaultConfig(),
		Analytics:   analytics.DefaultConfig(),
	}
}

// Validate validates the aggregate configuration
func (c *Config) Validate() error {
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("ratelimit: %w", err)
	}
	if err := c.LoadMonitor.Validate(); err != nil {
		return fmt.Errorf("loadmon: %w", err)
	}
	if err := c.Mode.Validate(); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	if err := c.Updates.Validate(); err != nil {
		return fmt.Errorf("updates: %w", err)
	}
	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	return c.validateCrossReferences()
}

// validateCrossReferences checks reference integrity across sub-configs
func (c *Config) validateCrossReferences() error {
	// analytics 计费资源必须是已注册的限流资源
	if c.RateLimit.Enabled {
		resources := make([]interface{}, 0, len(c.RateLimit.Resources))
		for name := range c.RateLimit.Resources {
			resources = append(resources, name)
		}
		if err := validation.Validate(c.Analytics.Resource,
			validation.Required, validation.In(resources...)); err != nil {
			return fmt.Errorf("analytics.resource %q not registered in ratelimit.resources: %w",
				c.Analytics.Resource, err)
		}
	}

	// 基准间隔表只能引用已注册的模块
	moduleIDs := make([]interface{}, 0, len(c.Mode.Modules))
	for id := range c.Mode.Modules {
		moduleIDs = append(moduleIDs, id)
	}
	for moduleID := range c.Updates.BaseIntervals {
		if err := validation.Validate(moduleID, validation.In(moduleIDs...)); err != nil {
			return fmt.Errorf("updates.base_intervals references unknown module %q: %w", moduleID, err)
		}
	}

	return nil
}
