// Package logger 提供模块化的 zap 日志封装
//
// 设计理念：
//   - Manager 按模块名管理多个 Logger 实例（module 字段创建时绑定）
//   - CtxZapLogger 使用时只需传递 ctx，自动附加 trace_id
//   - 文件输出通过 lumberjack 轮转，可选
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager Logger 管理器（管理多个 Logger 实例）
type Manager struct {
	baseConfig ManagerConfig
	loggers    map[string]*CtxZapLogger
	writers    map[string]*lumberjack.Logger
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// NewManager 创建独立的 Manager 实例（支持多实例场景）
// cfg 中的零值字段会自动填充为默认值
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		loggers:    make(map[string]*CtxZapLogger),
		writers:    make(map[string]*lumberjack.Logger),
	}
}

// InitManager 初始化全局 Logger 管理器（只生效一次）
func InitManager(cfg ManagerConfig) {
	managerOnce.Do(func() {
		globalManager = NewManager(cfg)
	})
}

// GetLogger 从全局管理器获取模块 Logger（未初始化时使用默认配置）
func GetLogger(module string) *CtxZapLogger {
	if globalManager == nil {
		InitManager(DefaultConfig())
	}
	return globalManager.GetLogger(module)
}

// GetLogger 获取（或创建）模块 Logger
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double check
	if l, ok := m.loggers[module]; ok {
		return l
	}

	l := m.buildLogger(module)
	m.loggers[module] = l
	return l
}

// Close 关闭所有文件写入器
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, w := range m.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.writers = make(map[string]*lumberjack.Logger)
	return firstErr
}

// buildLogger 构建模块 Logger（需持有写锁）
func (m *Manager) buildLogger(module string) *CtxZapLogger {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(m.baseConfig.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if m.baseConfig.Encoding == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	// 可选的文件输出（lumberjack 轮转）
	if m.baseConfig.OutputDir != "" {
		writer := &lumberjack.Logger{
			Filename:   filepath.Join(m.baseConfig.OutputDir, fmt.Sprintf("%s.log", module)),
			MaxSize:    m.baseConfig.MaxSizeMB,
			MaxBackups: m.baseConfig.MaxBackups,
			MaxAge:     m.baseConfig.MaxAgeDays,
			Compress:   m.baseConfig.Compress,
		}
		m.writers[module] = writer
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(writer), level))
	}

	base := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1), // 跳过 CtxZapLogger 包装层
	).With(zap.String("module", module))

	return &CtxZapLogger{base: base, module: module}
}
