// Package governor 资源治理核心的编排门面
//
// 设计理念：
//   - 唯一的构造入口：只有本包可以组装限流注册表、负载监控、
//     模式控制器和更新管道，业务协作方一律通过门面的公开操作交互
//   - 显式句柄：New 返回的值由进程启动处传递给所有调用方，没有
//     隐藏的全局单例
//   - 后台循环（负载采样、更新分发）由 Start/Stop 统一管理
package governor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/talentmesh/go-talentmesh-core/analytics"
	"github.com/talentmesh/go-talentmesh-core/loadmon"
	"github.com/talentmesh/go-talentmesh-core/logger"
	"github.com/talentmesh/go-talentmesh-core/mode"
	"github.com/talentmesh/go-talentmesh-core/ratelimit"
	"github.com/talentmesh/go-talentmesh-core/updates"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Governor process-wide resource governance facade
type Governor struct {
	config Config

	limiter     *ratelimit.Registry
	monitor     *loadmon.Monitor
	modeCtrl    *mode.Controller
	cache       *updates.Cache
	queue       *updates.Queue
	history     *updates.History
	intervals   *updates.IntervalCalculator
	evaluator   *updates.Evaluator
	dispatcher  *updates.Dispatcher
	coordinator *analytics.Coordinator

	logger  *logger.CtxZapLogger
	nowFunc func() time.Time

	started bool
	closed  bool
	mu      sync.Mutex
}

// Option governor option
type Option func(*options)

type options struct {
	logger        *logger.CtxZapLogger
	nowFunc       func() time.Time
	statsProvider loadmon.StatsProvider
	meter         metric.Meter
}

// WithLogger injects a logger shared by all parts
func WithLogger(l *logger.CtxZapLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithNowFunc injects a clock (tests)
func WithNowFunc(now func() time.Time) Option {
	return func(o *options) { o.nowFunc = now }
}

// WithStatsProvider injects the CPU/memory stats source for load sampling
func WithStatsProvider(p loadmon.StatsProvider) Option {
	return func(o *options) { o.statsProvider = p }
}

// WithMeter registers OpenTelemetry instruments against the given Meter
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// New builds the governance core
//
// Fail fast: any configuration problem (including cross-references like an
// unregistered analytics resource) surfaces here, never at call time.
func New(cfg Config, collaborator analytics.Collaborator, opts ...Option) (*Governor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if collaborator == nil {
		return nil, fmt.Errorf("analytics collaborator must not be nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.GetLogger("talentmesh")
	}
	if o.nowFunc == nil {
		o.nowFunc = time.Now
	}

	g := &Governor{
		config:  cfg,
		logger:  o.logger,
		nowFunc: o.nowFunc,
	}

	var err error

	rlOpts := []ratelimit.Option{
		ratelimit.WithLogger(o.logger),
		ratelimit.WithNowFunc(o.nowFunc),
	}
	if o.meter != nil {
		rlMetrics := ratelimit.NewOTelMetrics()
		if err = rlMetrics.RegisterMetrics(o.meter); err != nil {
			return nil, fmt.Errorf("register ratelimit metrics failed: %w", err)
		}
		rlOpts = append(rlOpts, ratelimit.WithOTelMetrics(rlMetrics))
	}
	g.limiter, err = ratelimit.NewRegistry(cfg.RateLimit, rlOpts...)
	if err != nil {
		return nil, fmt.Errorf("build rate limit registry failed: %w", err)
	}

	g.modeCtrl, err = mode.NewController(cfg.Mode,
		mode.WithLogger(o.logger),
		mode.WithNowFunc(o.nowFunc))
	if err != nil {
		return nil, fmt.Errorf("build mode controller failed: %w", err)
	}

	g.cache = updates.NewCache()
	g.queue = updates.NewQueue(cfg.Updates.QueueCapacity)
	g.history = updates.NewHistory(cfg.Updates.HistorySize)
	g.intervals = updates.NewIntervalCalculator(cfg.Updates, g.modeCtrl)
	g.evaluator = updates.NewEvaluator(cfg.Updates, g.cache, g.modeCtrl, g.intervals,
		updates.WithEvaluatorNowFunc(o.nowFunc))

	dispOpts := []updates.DispatcherOption{
		updates.WithDispatcherLogger(o.logger),
		updates.WithDispatcherNowFunc(o.nowFunc),
	}
	if o.meter != nil {
		upMetrics := updates.NewOTelMetrics()
		if err = upMetrics.RegisterMetrics(o.meter); err != nil {
			return nil, fmt.Errorf("register updates metrics failed: %w", err)
		}
		dispOpts = append(dispOpts, updates.WithDispatcherOTelMetrics(upMetrics))
	}
	g.dispatcher, err = updates.NewDispatcher(cfg.Updates, g.queue, g.cache, g.history,
		g.intervals, g.modeCtrl, dispOpts...)
	if err != nil {
		return nil, fmt.Errorf("build dispatcher failed: %w", err)
	}

	g.coordinator, err = analytics.NewCoordinator(cfg.Analytics, g.limiter, g.modeCtrl,
		collaborator, analytics.WithCoordinatorLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("build operation coordinator failed: %w", err)
	}

	monOpts := []loadmon.MonitorOption{
		loadmon.WithLogger(o.logger),
		loadmon.WithNowFunc(o.nowFunc),
		loadmon.WithActiveOpsGauge(g.modeCtrl.TotalActiveOps),
		loadmon.WithQueueDepthGauge(func() int64 { return int64(g.queue.Len()) }),
	}
	if o.statsProvider != nil {
		monOpts = append(monOpts, loadmon.WithStatsProvider(o.statsProvider))
	}
	g.monitor, err = loadmon.NewMonitor(cfg.LoadMonitor, monOpts...)
	if err != nil {
		return nil, fmt.Errorf("build load monitor failed: %w", err)
	}

	// 负载分类喂给模式状态机
	g.monitor.Subscribe(g.modeCtrl.OnClassification)

	g.logger.Info("🏛️  资源治理核心构建完成",
		zap.Int("resources", len(cfg.RateLimit.Resources)),
		zap.Int("modules", len(cfg.Mode.Modules)))

	return g, nil
}

// Start launches the background loops (sampling + dispatch)
func (g *Governor) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return fmt.Errorf("governor already stopped")
	}
	if g.started {
		return nil
	}

	var eg errgroup.Group
	eg.Go(g.monitor.Start)
	eg.Go(g.dispatcher.Start)
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("start governor failed: %w", err)
	}

	g.started = true
	g.logger.Info("🚦 资源治理核心已启动")
	return nil
}

// Stop shuts the background loops down (idempotent)
func (g *Governor) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	g.started = false

	var firstErr error
	if err := g.dispatcher.Stop(); err != nil {
		firstErr = err
	}
	if err := g.monitor.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := g.limiter.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	g.logger.Info("🛑 资源治理核心已停止")
	return firstErr
}

// Shutdown implements the samber/do shutdown interface
func (g *Governor) Shutdown() error {
	return g.Stop()
}

// CheckRateLimit checks and charges one unit of the resource's window quota
func (g *Governor) CheckRateLimit(ctx context.Context, resourceType string) (bool, error) {
	return g.limiter.Allow(ctx, resourceType)
}

// RequestUpdate admits one update request into the pipeline
//
// Enqueues and returns immediately; never waits for dispatch. Deferred and
// Rejected are ordinary outcomes the caller branches on, not errors.
func (g *Governor) RequestUpdate(ctx context.Context, moduleID, updateType string,
	trigger updates.Trigger, payload interface{}, priority updates.Priority) (updates.Decision, error) {

	req := &updates.Request{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		UpdateType:  updateType,
		Trigger:     trigger,
		Payload:     payload,
		Priority:    priority,
		RequestedAt: g.nowFunc(),
	}

	ev, err := g.evaluator.Evaluate(req)
	if err != nil {
		return updates.DecisionRejected, err
	}

	if ev.Decision == updates.DecisionAdmitted {
		if !g.queue.Enqueue(req) {
			// 队列满且新请求就是最差的一个：当场被淘汰。
			// 淘汰只计数，不作为错误上抛。
			g.logger.DebugCtx(ctx, "📤 更新请求在入队时被淘汰",
				zap.String("key", req.Key().String()),
				zap.String("priority", priority.String()))
		}
	}

	g.logger.DebugCtx(ctx, "🎫 更新请求评估完成",
		zap.String("key", req.Key().String()),
		zap.String("trigger", string(trigger)),
		zap.String("decision", ev.Decision.String()),
		zap.String("reason", ev.Reason))

	return ev.Decision, nil
}

// CoordinateOperation admits and forwards one predictive-analytics operation
func (g *Governor) CoordinateOperation(ctx context.Context, opType string, payload interface{}) (analytics.Result, error) {
	return g.coordinator.CoordinateOperation(ctx, opType, payload)
}

// RegisterUpdateCallback binds the collaborator's update function to a key
func (g *Governor) RegisterUpdateCallback(moduleID, updateType string, cb updates.Callback) error {
	return g.dispatcher.RegisterCallback(moduleID, updateType, cb)
}

// RegisterModule adds a module class after construction (startup wiring)
func (g *Governor) RegisterModule(id string, essential bool) error {
	return g.modeCtrl.RegisterModule(id, essential)
}

// CurrentMode returns the current system mode
func (g *Governor) CurrentMode() mode.Mode {
	return g.modeCtrl.Current()
}

// RateLimitEvents obtains the rate limit event bus for subscribers
func (g *Governor) RateLimitEvents() ratelimit.EventBus {
	return g.limiter.GetEventBus()
}

// SubscribeModeChanges registers a mode change listener
func (g *Governor) SubscribeModeChanges(l mode.ChangeListener) {
	g.modeCtrl.Subscribe(l)
}
