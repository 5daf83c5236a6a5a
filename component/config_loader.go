package component

// ConfigLoader 配置加载器接口
//
// 组件在 Init 阶段通过它读取自己的配置段，
// 避免组件直接依赖具体的配置实现（viper 等）
type ConfigLoader interface {
	// Unmarshal 将指定配置段解析到结构体
	// key 为空时解析整个配置树
	Unmarshal(key string, out interface{}) error

	// IsSet 判断配置段是否存在
	IsSet(key string) bool

	// GetString 读取字符串配置（便捷方法）
	GetString(key string) string
}
