package updates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/talentmesh/go-talentmesh-core/logger"
	"github.com/talentmesh/go-talentmesh-core/mode"
	"go.uber.org/zap"
)

// Callback collaborator-registered update function
//
// Invoked on a worker pool goroutine with a deadline context; must be
// idempotent and honor ctx cancellation for the timeout to be effective.
type Callback func(ctx context.Context, req *Request) error

// Dispatcher single dispatch loop draining the pending queue
//
// Pops by priority, enforces per-key minimum spacing from the interval
// calculator, and invokes callbacks on an ants pool so a slow collaborator
// never blocks the loop or any admission path.
type Dispatcher struct {
	config    Config
	queue     *Queue
	cache     *Cache
	history   *History
	intervals *IntervalCalculator
	modeCtrl  *mode.Controller

	callbacks map[Key]Callback
	cbMu      sync.RWMutex

	pool    *ants.Pool
	otel    *OTelMetrics
	logger  *logger.CtxZapLogger
	nowFunc func() time.Time

	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	closed  bool
	mu      sync.Mutex
}

// DispatcherOption dispatcher option
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger injects a logger
func WithDispatcherLogger(l *logger.CtxZapLogger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// WithDispatcherNowFunc injects a clock (tests)
func WithDispatcherNowFunc(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.nowFunc = now }
}

// WithDispatcherOTelMetrics attaches an OpenTelemetry metrics adapter
func WithDispatcherOTelMetrics(m *OTelMetrics) DispatcherOption {
	return func(d *Dispatcher) { d.otel = m }
}

// NewDispatcher creates a dispatcher
func NewDispatcher(cfg Config, queue *Queue, cache *Cache, history *History,
	intervals *IntervalCalculator, modeCtrl *mode.Controller, opts ...DispatcherOption) (*Dispatcher, error) {

	d := &Dispatcher{
		config:    cfg,
		queue:     queue,
		cache:     cache,
		history:   history,
		intervals: intervals,
		modeCtrl:  modeCtrl,
		callbacks: make(map[Key]Callback),
		nowFunc:   time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.GetLogger("talentmesh")
	}

	pool, err := ants.NewPool(cfg.CallbackPoolSize)
	if err != nil {
		return nil, fmt.Errorf("create callback pool failed: %w", err)
	}
	d.pool = pool

	return d, nil
}

// RegisterCallback binds a callback to a key
//
// Registration-time errors are the fail-fast surface for programmer
// mistakes; dispatch never invents callbacks.
func (d *Dispatcher) RegisterCallback(moduleID, updateType string, cb Callback) error {
	if cb == nil {
		return fmt.Errorf("callback must not be nil")
	}
	if !d.modeCtrl.Has(moduleID) {
		return fmt.Errorf("%w: %q", mode.ErrUnknownModule, moduleID)
	}

	key := Key{ModuleID: moduleID, UpdateType: updateType}

	d.cbMu.Lock()
	defer d.cbMu.Unlock()

	if _, exists := d.callbacks[key]; exists {
		return fmt.Errorf("%w: %s", ErrCallbackExists, key)
	}
	d.callbacks[key] = cb
	return nil
}

// HasCallback reports whether a callback is registered for the key
func (d *Dispatcher) HasCallback(key Key) bool {
	d.cbMu.RLock()
	defer d.cbMu.RUnlock()
	_, ok := d.callbacks[key]
	return ok
}

// Start launches the dispatch loop
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	if d.started {
		return nil
	}
	d.started = true

	go d.loop()

	d.logger.Debug("🚚 更新分发循环已启动",
		zap.Int("pool_size", d.config.CallbackPoolSize),
		zap.Duration("dispatch_timeout", d.config.DispatchTimeout))
	return nil
}

// Stop terminates the loop and releases the pool (idempotent)
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	started := d.started
	d.mu.Unlock()

	if started {
		close(d.stopCh)
		<-d.doneCh
	}
	d.pool.Release()
	return nil
}

// loop drains the queue until stopped
func (d *Dispatcher) loop() {
	defer close(d.doneCh)

	for {
		select {
		case <-d.stopCh:
			return
		default:
		}

		req, ok := d.queue.DequeueNext()
		if !ok {
			d.idle()
			continue
		}

		if !d.dueNow(req) {
			// Not yet due: push back and let the poll interval pass.
			// Coalescing keeps this from duplicating the key.
			d.queue.Enqueue(req)
			d.idle()
			continue
		}

		d.dispatch(req)
	}
}

// idle sleeps one poll interval, cut short by Stop
func (d *Dispatcher) idle() {
	select {
	case <-d.stopCh:
	case <-time.After(d.config.PollInterval):
	}
}

// dueNow applies per-key minimum spacing
//
// User requests bypass spacing: they were admitted on explicit intent.
func (d *Dispatcher) dueNow(req *Request) bool {
	if req.Trigger == TriggerUserRequest {
		return true
	}

	entry, found := d.cache.Get(req.Key())
	if !found {
		return true
	}

	effective, ok := d.intervals.Effective(req.ModuleID, req.UpdateType)
	if !ok {
		// Suspended scheduling: hold the request until the mode recovers
		return false
	}

	return d.nowFunc().Sub(entry.LastDispatched) >= effective
}

// dispatch submits one callback invocation to the pool
func (d *Dispatcher) dispatch(req *Request) {
	d.cbMu.RLock()
	cb, ok := d.callbacks[req.Key()]
	d.cbMu.RUnlock()

	if !ok {
		d.logger.Warn("⚠️  丢弃无回调的更新请求",
			zap.String("key", req.Key().String()),
			zap.String("trigger", string(req.Trigger)))
		return
	}

	err := d.pool.Submit(func() {
		d.invoke(req, cb)
	})
	if err != nil {
		// Pool saturated or released: record the miss, no retry
		d.modeCtrl.RecordError(req.ModuleID)
		d.logger.Warn("⚠️  回调池提交失败",
			zap.String("key", req.Key().String()),
			zap.Error(err))
	}
}

// invoke runs the callback with the dispatch execution budget
func (d *Dispatcher) invoke(req *Request, cb Callback) {
	d.modeCtrl.OpStarted(req.ModuleID)
	defer d.modeCtrl.OpFinished(req.ModuleID)

	start := d.nowFunc()
	ctx, cancel := context.WithTimeout(context.Background(), d.config.DispatchTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cb(ctx, req)
	}()

	var outcome Outcome
	select {
	case err := <-done:
		if err != nil {
			outcome = OutcomeError
			d.modeCtrl.RecordError(req.ModuleID)
			d.logger.Warn("⚠️  更新回调失败",
				zap.String("key", req.Key().String()),
				zap.Error(err))
		} else {
			outcome = OutcomeOK
		}
	case <-ctx.Done():
		// Budget exceeded: marked Timeout, never retried by this core
		outcome = OutcomeTimeout
		d.modeCtrl.RecordError(req.ModuleID)
		d.logger.Warn("⏱️  更新回调超时",
			zap.String("key", req.Key().String()),
			zap.Duration("budget", d.config.DispatchTimeout))
	}

	dispatchedAt := d.nowFunc()
	if outcome == OutcomeOK {
		d.cache.Put(req.Key(), req.Payload, dispatchedAt)
	}

	d.history.Append(Record{
		ID:           uuid.New(),
		Key:          req.Key(),
		Trigger:      req.Trigger,
		Priority:     req.Priority,
		DispatchedAt: dispatchedAt,
		Duration:     dispatchedAt.Sub(start),
		Outcome:      outcome,
	})

	if d.otel != nil {
		d.otel.RecordDispatch(context.Background(), req.ModuleID, outcome)
	}
}
