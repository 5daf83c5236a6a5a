package ratelimit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/talentmesh/go-talentmesh-core/logger"
	"go.uber.org/zap"
)

// Registry fixed-window rate limit registry
//
// One bucket per registered resource type, created once at construction and
// never destroyed while the process runs. Implements RateLimiter.
type Registry struct {
	config   Config
	buckets  map[string]*bucket
	metrics  map[string]MetricsCollector
	eventBus EventBus
	otel     *OTelMetrics
	logger   *logger.CtxZapLogger
	nowFunc  func() time.Time
	closed   bool
	mu       sync.RWMutex
}

// Option registry option
type Option func(*Registry)

// WithLogger injects a logger
func WithLogger(l *logger.CtxZapLogger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithNowFunc injects a clock (tests)
func WithNowFunc(now func() time.Time) Option {
	return func(r *Registry) { r.nowFunc = now }
}

// WithOTelMetrics attaches an OpenTelemetry metrics adapter
func WithOTelMetrics(m *OTelMetrics) Option {
	return func(r *Registry) { r.otel = m }
}

// NewRegistry creates the rate limit registry
//
// The full resource set comes from cfg; callers naming a resource outside
// this set get ErrUnknownResource, which is a programmer error, not load.
func NewRegistry(cfg Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Registry{
		config:  cfg,
		buckets: make(map[string]*bucket),
		metrics: make(map[string]MetricsCollector),
		nowFunc: time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logger.GetLogger("talentmesh")
	}

	if !cfg.Enabled {
		r.logger.Debug("⏭️  限流未启用，所有调用直接放行")
		return r, nil
	}

	now := r.nowFunc()
	for resource, rc := range cfg.Resources {
		r.buckets[resource] = newBucket(resource, rc, now)
		r.metrics[resource] = NewMetricsCollector(resource)
	}

	r.eventBus = NewEventBus(cfg.EventBusBuffer)

	r.logger.Debug("🎯 限流注册表初始化完成",
		zap.Int("resources", len(cfg.Resources)),
		zap.Int("event_bus_buffer", cfg.EventBusBuffer))

	return r, nil
}

// Allow checks if one request for the resource is permitted
func (r *Registry) Allow(ctx context.Context, resource string) (bool, error) {
	return r.AllowN(ctx, resource, 1)
}

// AllowN checks if N requests are permitted
//
// Non-blocking: one bounded critical section on the resource's own bucket.
func (r *Registry) AllowN(ctx context.Context, resource string, n int64) (bool, error) {
	if !r.config.Enabled {
		return true, nil
	}

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return false, ErrClosed
	}
	b, exists := r.buckets[resource]
	mc := r.metrics[resource]
	r.mu.RUnlock()

	if !exists {
		return false, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}

	resp := b.allow(n, r.nowFunc())

	if resp.Allowed {
		mc.RecordAdmitted(resp.Remaining)
		if r.otel != nil {
			r.otel.RecordAdmitted(ctx, resource)
		}
		if r.eventBus != nil {
			r.eventBus.Publish(&AdmittedEvent{
				BaseEvent: NewBaseEvent(EventAdmitted, resource, ctx),
				Remaining: resp.Remaining,
				Limit:     resp.Limit,
			})
		}
	} else {
		mc.RecordDenied()
		if r.otel != nil {
			r.otel.RecordDenied(ctx, resource)
		}
		if r.eventBus != nil {
			r.eventBus.Publish(&DeniedEvent{
				BaseEvent:  NewBaseEvent(EventDenied, resource, ctx),
				RetryAfter: resp.RetryAfter,
			})
		}
	}

	return resp.Allowed, nil
}

// Snapshot returns the current state of every bucket, sorted by resource
func (r *Registry) Snapshot() []BucketSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.nowFunc()
	out := make([]BucketSnapshot, 0, len(r.buckets))
	for _, b := range r.buckets {
		out = append(out, b.snapshot(now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}

// GetMetrics returns the metrics snapshot for one resource
func (r *Registry) GetMetrics(resource string) *MetricsSnapshot {
	r.mu.RLock()
	mc, exists := r.metrics[resource]
	r.mu.RUnlock()

	if !exists {
		return &MetricsSnapshot{Resource: resource}
	}
	return mc.GetSnapshot()
}

// GetEventBus obtains the event bus
func (r *Registry) GetEventBus() EventBus {
	return r.eventBus
}

// Reset clears the window state of a resource
func (r *Registry) Reset(resource string) {
	r.mu.RLock()
	b, exists := r.buckets[resource]
	mc := r.metrics[resource]
	r.mu.RUnlock()

	if !exists {
		return
	}

	b.reset(r.nowFunc())
	mc.Reset()

	if r.eventBus != nil {
		r.eventBus.Publish(&WindowResetEvent{
			BaseEvent: NewBaseEvent(EventWindowReset, resource, context.Background()),
		})
	}
}

// Has reports whether the resource type is registered
func (r *Registry) Has(resource string) bool {
	if !r.config.Enabled {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.buckets[resource]
	return ok
}

// Close releases resources
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if r.eventBus != nil {
		r.eventBus.Close()
	}
	return nil
}

// Shutdown implements the samber/do shutdown interface
func (r *Registry) Shutdown() error {
	return r.Close()
}
