package logger

// ManagerConfig Logger 管理器配置
type ManagerConfig struct {
	// Level 日志级别：debug, info, warn, error
	Level string `mapstructure:"level"`

	// Encoding 编码格式：json, console
	Encoding string `mapstructure:"encoding"`

	// OutputDir 文件输出目录（为空时仅输出到 stdout）
	OutputDir string `mapstructure:"output_dir"`

	// MaxSizeMB 单文件大小上限（lumberjack）
	MaxSizeMB int `mapstructure:"max_size_mb"`

	// MaxBackups 保留的轮转文件数
	MaxBackups int `mapstructure:"max_backups"`

	// MaxAgeDays 轮转文件保留天数
	MaxAgeDays int `mapstructure:"max_age_days"`

	// Compress 是否压缩轮转文件
	Compress bool `mapstructure:"compress"`
}

// ApplyDefaults 零值字段填充默认值
func (c *ManagerConfig) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Encoding == "" {
		c.Encoding = "console"
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 100
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 10
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = 30
	}
}

// DefaultConfig 返回默认配置
func DefaultConfig() ManagerConfig {
	cfg := ManagerConfig{}
	cfg.ApplyDefaults()
	return cfg
}
