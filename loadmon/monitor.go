package loadmon

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/talentmesh/go-talentmesh-core/logger"
	"go.uber.org/zap"
)

// Monitor periodic load sampler and classifier
type Monitor struct {
	config      Config
	provider    StatsProvider
	activeOps   GaugeFunc
	queueDepth  GaugeFunc
	scheduler   gocron.Scheduler
	subscribers []Subscriber
	recent      []float64 // ring of recent composite scores
	recentIdx   int
	recentLen   int
	lastSample  Sample
	logger      *logger.CtxZapLogger
	nowFunc     func() time.Time
	started     bool
	mu          sync.Mutex
}

// MonitorOption monitor option
type MonitorOption func(*Monitor)

// WithStatsProvider injects a CPU/memory stats provider
func WithStatsProvider(p StatsProvider) MonitorOption {
	return func(m *Monitor) { m.provider = p }
}

// WithActiveOpsGauge injects the active operation count source
func WithActiveOpsGauge(g GaugeFunc) MonitorOption {
	return func(m *Monitor) { m.activeOps = g }
}

// WithQueueDepthGauge injects the queue depth source
func WithQueueDepthGauge(g GaugeFunc) MonitorOption {
	return func(m *Monitor) { m.queueDepth = g }
}

// WithLogger injects a logger
func WithLogger(l *logger.CtxZapLogger) MonitorOption {
	return func(m *Monitor) { m.logger = l }
}

// WithNowFunc injects a clock (tests)
func WithNowFunc(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.nowFunc = now }
}

// NewMonitor creates a load monitor
func NewMonitor(cfg Config, opts ...MonitorOption) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m := &Monitor{
		config:  cfg,
		recent:  make([]float64, cfg.SmoothingWindow),
		nowFunc: time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		m.provider = NewRuntimeStatsProvider()
	}
	if m.activeOps == nil {
		m.activeOps = func() int64 { return 0 }
	}
	if m.queueDepth == nil {
		m.queueDepth = func() int64 { return 0 }
	}
	if m.logger == nil {
		m.logger = logger.GetLogger("talentmesh")
	}

	return m, nil
}

// Subscribe registers a classification consumer
// Must be called before Start; not safe against a running sampler otherwise
func (m *Monitor) Subscribe(s Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, s)
}

// Start launches the sampling job
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler failed: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(m.config.SampleInterval),
		gocron.NewTask(func() { m.SampleOnce() }),
	)
	if err != nil {
		return fmt.Errorf("register sampling job failed: %w", err)
	}

	scheduler.Start()
	m.scheduler = scheduler
	m.started = true

	m.logger.Debug("📡 负载监控已启动",
		zap.Duration("interval", m.config.SampleInterval),
		zap.Int("smoothing_window", m.config.SmoothingWindow))

	return nil
}

// Stop shuts the sampling job down (idempotent)
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil
	}
	m.started = false

	if m.scheduler != nil {
		if err := m.scheduler.Shutdown(); err != nil {
			return fmt.Errorf("shutdown scheduler failed: %w", err)
		}
		m.scheduler = nil
	}
	return nil
}

// SampleOnce takes one sample, classifies, and notifies subscribers
//
// Exposed for tests and for an embedding application that wants to drive
// the cadence itself instead of the internal job.
func (m *Monitor) SampleOnce() Classification {
	sample := m.sample()

	m.mu.Lock()
	m.lastSample = sample
	m.recent[m.recentIdx] = sample.Composite
	m.recentIdx = (m.recentIdx + 1) % len(m.recent)
	if m.recentLen < len(m.recent) {
		m.recentLen++
	}

	var sum float64
	for i := 0; i < m.recentLen; i++ {
		sum += m.recent[i]
	}
	smoothed := sum / float64(m.recentLen)
	subscribers := make([]Subscriber, len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.Unlock()

	cls := Classification{
		Level:   m.classify(smoothed),
		Score:   smoothed,
		Sampled: sample.Timestamp,
	}

	for _, s := range subscribers {
		s(cls)
	}

	return cls
}

// LastSample returns the most recent raw sample
func (m *Monitor) LastSample() Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSample
}

// sample collects one raw observation
func (m *Monitor) sample() Sample {
	cpu := clamp01(m.provider.GetCPUUsage())
	mem := clamp01(m.provider.GetMemoryUsage())
	ops := m.activeOps()
	depth := m.queueDepth()

	opsRatio := clamp01(float64(ops) / float64(m.config.ActiveOpsCapacity))
	queueRatio := clamp01(float64(depth) / float64(m.config.QueueCapacity))

	composite := cpu*m.config.CPUWeight +
		mem*m.config.MemoryWeight +
		opsRatio*m.config.ActiveOpsWeight +
		queueRatio*m.config.QueueWeight

	return Sample{
		Timestamp:  m.nowFunc(),
		CPU:        cpu,
		Memory:     mem,
		ActiveOps:  ops,
		QueueDepth: depth,
		Composite:  composite,
	}
}

// classify maps a smoothed score onto a level
func (m *Monitor) classify(score float64) Level {
	switch {
	case score >= m.config.EmergencyThreshold:
		return LevelEmergency
	case score >= m.config.CriticalThreshold:
		return LevelCritical
	case score >= m.config.HighLoadThreshold:
		return LevelHighLoad
	default:
		return LevelNormal
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
