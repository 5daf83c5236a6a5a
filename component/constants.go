package component

// 核心组件名称常量
// 统一定义，避免各处散落字符串
const (
	// ComponentConfig 配置组件
	ComponentConfig = "config"

	// ComponentLogger 日志组件
	ComponentLogger = "logger"

	// ComponentGovernor 资源治理组件（限流 + 按需更新核心）
	ComponentGovernor = "governor"

	// ComponentStatusAPI 状态快照 HTTP 接口组件
	ComponentStatusAPI = "statusapi"
)
