package mode

import (
	"sync"
	"sync/atomic"
	"time"
)

// ModuleSnapshot read-only view of one module class
type ModuleSnapshot struct {
	ID           string    `json:"id"`
	Essential    bool      `json:"essential"`
	Enabled      bool      `json:"enabled"`
	ActiveOps    int64     `json:"active_ops"`
	ErrorCount   int64     `json:"error_count"`
	LastActivity time.Time `json:"last_activity"`
}

// moduleState mutable state of one registered module class
//
// 计数器用原子操作，enabled/lastActivity 用自己的锁：
// 模式切换批量翻转 enabled 时不阻塞业务方的计数更新
type moduleState struct {
	id         string
	essential  bool
	enabled    int32 // atomic bool
	activeOps  int64
	errorCount int64

	lastActivity time.Time
	mu           sync.RWMutex
}

func newModuleState(id string, essential bool) *moduleState {
	s := &moduleState{id: id, essential: essential}
	atomic.StoreInt32(&s.enabled, 1)
	return s
}

func (s *moduleState) isEnabled() bool {
	return atomic.LoadInt32(&s.enabled) == 1
}

func (s *moduleState) setEnabled(enabled bool) {
	var v int32
	if enabled {
		v = 1
	}
	atomic.StoreInt32(&s.enabled, v)
}

func (s *moduleState) opStarted(now time.Time) {
	atomic.AddInt64(&s.activeOps, 1)
	s.mu.Lock()
	s.lastActivity = now
	s.mu.Unlock()
}

func (s *moduleState) opFinished() {
	// 防御性下限：重复的 Finish 调用不把计数打成负数
	for {
		cur := atomic.LoadInt64(&s.activeOps)
		if cur <= 0 {
			return
		}
		if atomic.CompareAndSwapInt64(&s.activeOps, cur, cur-1) {
			return
		}
	}
}

func (s *moduleState) recordError() {
	atomic.AddInt64(&s.errorCount, 1)
}

func (s *moduleState) snapshot() ModuleSnapshot {
	s.mu.RLock()
	lastActivity := s.lastActivity
	s.mu.RUnlock()

	return ModuleSnapshot{
		ID:           s.id,
		Essential:    s.essential,
		Enabled:      s.isEnabled(),
		ActiveOps:    atomic.LoadInt64(&s.activeOps),
		ErrorCount:   atomic.LoadInt64(&s.errorCount),
		LastActivity: lastActivity,
	}
}
