package loadmon

import (
	"runtime"
)

// StatsProvider 系统指标数据提供者（依赖注入）
//
// 使用说明：
//   - 实现此接口以提供 CPU / 内存利用率
//   - 可以使用 gopsutil 等库实现具体的采集逻辑
//   - 未注入时使用基于 runtime 的默认实现
type StatsProvider interface {
	// GetCPUUsage 获取CPU使用率（0.0-1.0）
	GetCPUUsage() float64

	// GetMemoryUsage 获取内存使用率（0.0-1.0）
	GetMemoryUsage() float64
}

// runtimeStatsProvider 默认实现：从 Go runtime 估算
//
// CPU 以 goroutine 数对 GOMAXPROCS 的比值近似；内存以堆占用对
// sys 内存的比值近似。精确采集请注入 gopsutil 实现。
type runtimeStatsProvider struct{}

// NewRuntimeStatsProvider 创建基于 runtime 的默认提供者
func NewRuntimeStatsProvider() StatsProvider {
	return &runtimeStatsProvider{}
}

func (p *runtimeStatsProvider) GetCPUUsage() float64 {
	procs := runtime.GOMAXPROCS(0)
	if procs <= 0 {
		return 0
	}
	usage := float64(runtime.NumGoroutine()) / float64(procs*100)
	if usage > 1 {
		usage = 1
	}
	return usage
}

func (p *runtimeStatsProvider) GetMemoryUsage() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.Sys == 0 {
		return 0
	}
	usage := float64(ms.HeapAlloc) / float64(ms.Sys)
	if usage > 1 {
		usage = 1
	}
	return usage
}

// GaugeFunc 整数指标源（活跃操作数、队列深度）
type GaugeFunc func() int64
