package loadmon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStats 固定返回值的指标提供者
type fakeStats struct {
	cpu float64
	mem float64
}

func (f *fakeStats) GetCPUUsage() float64    { return f.cpu }
func (f *fakeStats) GetMemoryUsage() float64 { return f.mem }

func newTestMonitor(t *testing.T, stats *fakeStats, opts ...MonitorOption) *Monitor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SmoothingWindow = 3
	opts = append(opts, WithStatsProvider(stats))
	m, err := NewMonitor(cfg, opts...)
	require.NoError(t, err)
	return m
}

func TestMonitor_Classify(t *testing.T) {
	stats := &fakeStats{}
	m := newTestMonitor(t, stats)

	tests := []struct {
		score float64
		want  Level
	}{
		{0.10, LevelNormal},
		{0.39, LevelNormal},
		{0.40, LevelHighLoad},
		{0.69, LevelHighLoad},
		{0.70, LevelCritical},
		{0.89, LevelCritical},
		{0.90, LevelEmergency},
		{1.00, LevelEmergency},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.classify(tt.score), "score=%.2f", tt.score)
	}
}

func TestMonitor_CompositeScore(t *testing.T) {
	stats := &fakeStats{cpu: 1.0, mem: 1.0}
	cfg := DefaultConfig()
	m, err := NewMonitor(cfg,
		WithStatsProvider(stats),
		WithActiveOpsGauge(func() int64 { return cfg.ActiveOpsCapacity }),
		WithQueueDepthGauge(func() int64 { return cfg.QueueCapacity }),
	)
	require.NoError(t, err)

	// 所有分量打满时综合得分应为 1.0（权重已归一化）
	cls := m.SampleOnce()
	assert.InDelta(t, 1.0, cls.Score, 0.001)
	assert.Equal(t, LevelEmergency, cls.Level)
}

func TestMonitor_Smoothing(t *testing.T) {
	stats := &fakeStats{cpu: 0, mem: 0}
	m := newTestMonitor(t, stats)

	// 前两个样本为 0，第三个样本冲高；滑动平均应当抑制瞬时尖峰
	m.SampleOnce()
	m.SampleOnce()
	stats.cpu = 1.0
	stats.mem = 1.0
	cls := m.SampleOnce()

	assert.Less(t, cls.Score, 0.40, "单个尖峰经过平滑后不应达到 HighLoad")
	assert.Equal(t, LevelNormal, cls.Level)

	// 持续高压样本最终把平均值抬上去
	m.SampleOnce()
	cls = m.SampleOnce()
	assert.Greater(t, cls.Score, 0.40)
}

func TestMonitor_Subscribers(t *testing.T) {
	stats := &fakeStats{cpu: 0.2, mem: 0.2}
	m := newTestMonitor(t, stats)

	var got []Classification
	m.Subscribe(func(c Classification) {
		got = append(got, c)
	})

	m.SampleOnce()
	m.SampleOnce()

	require.Len(t, got, 2)
	assert.Equal(t, LevelNormal, got[0].Level)
}

func TestMonitor_StartStop(t *testing.T) {
	stats := &fakeStats{}
	cfg := DefaultConfig()
	cfg.SampleInterval = 10 * time.Millisecond
	m, err := NewMonitor(cfg, WithStatsProvider(stats))
	require.NoError(t, err)

	done := make(chan struct{})
	var once bool
	m.Subscribe(func(Classification) {
		if !once {
			once = true
			close(done)
		}
	})

	require.NoError(t, m.Start())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("采样任务未触发")
	}

	require.NoError(t, m.Stop())
	require.NoError(t, m.Stop(), "Stop 应当幂等")
}

func TestConfig_ValidateWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CPUWeight = 2
	cfg.MemoryWeight = 2
	cfg.ActiveOpsWeight = 0
	cfg.QueueWeight = 0
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 0.5, cfg.CPUWeight, 0.001, "权重应归一化")

	bad := DefaultConfig()
	bad.CriticalThreshold = 0.2
	assert.Error(t, bad.Validate())
}
