package analytics

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/talentmesh/go-talentmesh-core/logger"
	"github.com/talentmesh/go-talentmesh-core/mode"
	"github.com/talentmesh/go-talentmesh-core/ratelimit"
	"go.uber.org/zap"
)

// Coordinator admission gateway for predictive-analytics invocations
//
// Every call is charged against the configured rate limit resource, then
// gated on the system mode, then forwarded with a timeout. No retry: a
// non-OK Result goes back to the caller, whose retry policy it is.
type Coordinator struct {
	config       Config
	limiter      ratelimit.RateLimiter
	modeCtrl     *mode.Controller
	collaborator Collaborator
	essential    map[string]struct{}

	// outcome counters for the status snapshot
	okCount           int64
	rateLimitedCount  int64
	modeRejectedCount int64
	timeoutCount      int64
	errorCount        int64

	logger *logger.CtxZapLogger
}

// CoordinatorOption coordinator option
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger injects a logger
func WithCoordinatorLogger(l *logger.CtxZapLogger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates the operation coordinator
//
// An unregistered rate limit resource is a startup configuration error,
// never a per-call one.
func NewCoordinator(cfg Config, limiter ratelimit.RateLimiter, modeCtrl *mode.Controller,
	collaborator Collaborator, opts ...CoordinatorOption) (*Coordinator, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if collaborator == nil {
		return nil, fmt.Errorf("collaborator must not be nil")
	}
	if !limiter.Has(cfg.Resource) {
		return nil, fmt.Errorf("%w: %q", ratelimit.ErrUnknownResource, cfg.Resource)
	}

	c := &Coordinator{
		config:       cfg,
		limiter:      limiter,
		modeCtrl:     modeCtrl,
		collaborator: collaborator,
		essential:    make(map[string]struct{}, len(cfg.EssentialOps)),
	}
	for _, op := range cfg.EssentialOps {
		c.essential[op] = struct{}{}
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.GetLogger("talentmesh")
	}

	return c, nil
}

// CoordinateOperation admits and forwards one analytics operation
//
// 转发调用可能阻塞，但受 OperationTimeout 约束，且不持有任何
// 限流/模式相关的锁。
func (c *Coordinator) CoordinateOperation(ctx context.Context, opType string, payload interface{}) (Result, error) {
	allowed, err := c.limiter.Allow(ctx, c.config.Resource)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		atomic.AddInt64(&c.rateLimitedCount, 1)
		return Result{Status: StatusRateLimited}, nil
	}

	if c.modeCtrl.Current().IsDegraded() && !c.isEssential(opType) {
		atomic.AddInt64(&c.modeRejectedCount, 1)
		return Result{Status: StatusModeRejected}, nil
	}

	return c.forward(ctx, opType, payload), nil
}

// IsEssentialOp reports whether the operation type bypasses the mode gate
func (c *Coordinator) IsEssentialOp(opType string) bool {
	return c.isEssential(opType)
}

func (c *Coordinator) isEssential(opType string) bool {
	_, ok := c.essential[opType]
	return ok
}

// forward invokes the collaborator inside the execution budget
func (c *Coordinator) forward(ctx context.Context, opType string, payload interface{}) Result {
	callCtx, cancel := context.WithTimeout(ctx, c.config.OperationTimeout)
	defer cancel()

	type reply struct {
		output interface{}
		err    error
	}
	done := make(chan reply, 1)
	go func() {
		output, err := c.collaborator.Execute(callCtx, opType, payload)
		done <- reply{output: output, err: err}
	}()

	start := time.Now()
	select {
	case r := <-done:
		if r.err != nil {
			atomic.AddInt64(&c.errorCount, 1)
			c.logger.WarnCtx(ctx, "⚠️  分析协作方返回错误",
				zap.String("op_type", opType),
				zap.Error(r.err))
			return Result{Status: StatusError, Err: r.err}
		}
		atomic.AddInt64(&c.okCount, 1)
		return Result{Status: StatusOK, Output: r.output}
	case <-callCtx.Done():
		atomic.AddInt64(&c.timeoutCount, 1)
		c.logger.WarnCtx(ctx, "⏱️  分析协作方调用超时",
			zap.String("op_type", opType),
			zap.Duration("budget", c.config.OperationTimeout),
			zap.Duration("elapsed", time.Since(start)))
		return Result{Status: StatusTimeout, Err: callCtx.Err()}
	}
}

// Snapshot read-only outcome counters
type Snapshot struct {
	OK           int64 `json:"ok"`
	RateLimited  int64 `json:"rate_limited"`
	ModeRejected int64 `json:"mode_rejected"`
	Timeouts     int64 `json:"timeouts"`
	Errors       int64 `json:"errors"`
}

// GetSnapshot returns the outcome counters
func (c *Coordinator) GetSnapshot() Snapshot {
	return Snapshot{
		OK:           atomic.LoadInt64(&c.okCount),
		RateLimited:  atomic.LoadInt64(&c.rateLimitedCount),
		ModeRejected: atomic.LoadInt64(&c.modeRejectedCount),
		Timeouts:     atomic.LoadInt64(&c.timeoutCount),
		Errors:       atomic.LoadInt64(&c.errorCount),
	}
}
