package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsSnapshot 指标快照
type MetricsSnapshot struct {
	Resource      string
	TotalRequests int64
	Admitted      int64
	Denied        int64
	Remaining     int64   // 最近一次放行后的剩余配额
	DenyRate      float64 // 拒绝率
	LastResetAt   time.Time
}

// MetricsCollector 指标采集器接口
type MetricsCollector interface {
	// RecordAdmitted 记录放行的请求
	RecordAdmitted(remaining int64)

	// RecordDenied 记录被拒绝的请求
	RecordDenied()

	// GetSnapshot 获取指标快照
	GetSnapshot() *MetricsSnapshot

	// Reset 重置指标
	Reset()
}

// metricsCollector 指标采集器实现
type metricsCollector struct {
	resource      string
	totalRequests int64
	admitted      int64
	denied        int64
	remaining     int64
	lastResetAt   time.Time
	mu            sync.RWMutex
}

// NewMetricsCollector 创建指标采集器
func NewMetricsCollector(resource string) MetricsCollector {
	return &metricsCollector{
		resource:    resource,
		lastResetAt: time.Now(),
	}
}

// RecordAdmitted 记录放行的请求
func (m *metricsCollector) RecordAdmitted(remaining int64) {
	atomic.AddInt64(&m.totalRequests, 1)
	atomic.AddInt64(&m.admitted, 1)
	atomic.StoreInt64(&m.remaining, remaining)
}

// RecordDenied 记录被拒绝的请求
func (m *metricsCollector) RecordDenied() {
	atomic.AddInt64(&m.totalRequests, 1)
	atomic.AddInt64(&m.denied, 1)
}

// GetSnapshot 获取指标快照
func (m *metricsCollector) GetSnapshot() *MetricsSnapshot {
	total := atomic.LoadInt64(&m.totalRequests)
	admitted := atomic.LoadInt64(&m.admitted)
	denied := atomic.LoadInt64(&m.denied)
	remaining := atomic.LoadInt64(&m.remaining)

	var denyRate float64
	if total > 0 {
		denyRate = float64(denied) / float64(total)
	}

	m.mu.RLock()
	lastResetAt := m.lastResetAt
	m.mu.RUnlock()

	return &MetricsSnapshot{
		Resource:      m.resource,
		TotalRequests: total,
		Admitted:      admitted,
		Denied:        denied,
		Remaining:     remaining,
		DenyRate:      denyRate,
		LastResetAt:   lastResetAt,
	}
}

// Reset 重置指标
func (m *metricsCollector) Reset() {
	atomic.StoreInt64(&m.totalRequests, 0)
	atomic.StoreInt64(&m.admitted, 0)
	atomic.StoreInt64(&m.denied, 0)
	atomic.StoreInt64(&m.remaining, 0)

	m.mu.Lock()
	m.lastResetAt = time.Now()
	m.mu.Unlock()
}
