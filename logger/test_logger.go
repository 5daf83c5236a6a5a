package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger 创建测试用 Logger（日志写入内存，可断言）
// 用法：
//
//	l, logs := logger.NewTestLogger()
//	...
//	assert.Equal(t, 1, logs.FilterMessage("...").Len())
func NewTestLogger() (*CtxZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &CtxZapLogger{
		base:   zap.New(core),
		module: "test",
	}, logs
}

// Nop 返回丢弃所有输出的 Logger（基准测试、可选依赖占位）
func Nop() *CtxZapLogger {
	return &CtxZapLogger{base: zap.NewNop(), module: "nop"}
}
