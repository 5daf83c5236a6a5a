// Package component 提供组件接口定义
// 这是最底层的包，不依赖任何业务包，避免循环依赖
package component

import "context"

// Component 组件接口（统一生命周期管理）
//
// 治理核心的每个部件（配置、日志、治理器、状态接口）都实现此接口
// 组件生命周期：Init → Start → Stop
type Component interface {
	// Name 组件名称（唯一标识）
	Name() string

	// DependsOn 声明依赖的组件名称
	//
	// 支持可选依赖：
	//   - 强制依赖：直接返回组件名，如 "config", "logger"
	//   - 可选依赖：使用 "optional:" 前缀，如 "optional:statusapi"
	DependsOn() []string

	// Init 初始化组件（读取配置、创建资源，不启动后台循环）
	Init(ctx context.Context, loader ConfigLoader) error

	// Start 启动组件（后台采样循环、分发循环、HTTP 监听等）
	Start(ctx context.Context) error

	// Stop 停止组件（释放资源，保证幂等，允许重复调用）
	Stop(ctx context.Context) error
}

// HealthChecker 健康检查接口
// 组件可选实现此接口，提供健康检查能力
type HealthChecker interface {
	// Check 执行健康检查，nil 表示健康
	Check(ctx context.Context) error

	// Name 返回检查项名称（如 "governor"）
	Name() string
}
