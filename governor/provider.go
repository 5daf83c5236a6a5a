package governor

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/talentmesh/go-talentmesh-core/analytics"
	"github.com/talentmesh/go-talentmesh-core/config"
)

// ProvideGovernorOptions 创建 Governor 的选项
type ProvideGovernorOptions struct {
	Collaborator analytics.Collaborator // 预测分析协作方（必填）
	Options      []Option               // 构建选项（日志、时钟、Meter 等）
}

// ProvideGovernor 创建 Governor Provider
// 依赖 config.Loader；配置缺省时使用默认值
//
// 使用示例：
//
//	do.Provide(injector, governor.ProvideGovernor(governor.ProvideGovernorOptions{
//	    Collaborator: analyticsClient,
//	}))
//	gov := do.MustInvoke[*governor.Governor](injector)
func ProvideGovernor(opts ProvideGovernorOptions) func(do.Injector) (*Governor, error) {
	return func(i do.Injector) (*Governor, error) {
		cfg := DefaultConfig()

		if loader, err := do.Invoke[*config.Loader](i); err == nil && loader != nil {
			if loader.IsSet("governor") {
				if err := loader.Unmarshal("governor", &cfg); err != nil {
					return nil, fmt.Errorf("unmarshal governor config failed: %w", err)
				}
			}
		}

		g, err := New(cfg, opts.Collaborator, opts.Options...)
		if err != nil {
			return nil, fmt.Errorf("governor build failed: %w", err)
		}
		return g, nil
	}
}

// ProvideGovernorValue 直接注册已创建的 Governor（用于测试或特殊场景）
func ProvideGovernorValue(g *Governor) func(do.Injector) (*Governor, error) {
	return func(i do.Injector) (*Governor, error) {
		return g, nil
	}
}
