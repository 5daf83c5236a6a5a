package updates

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry instrumentation for the update pipeline.
// Registers against an injected Meter, same contract as ratelimit.OTelMetrics.
type OTelMetrics struct {
	registered bool
	mu         sync.RWMutex

	dispatchedTotal metric.Int64Counter
	evictedTotal    metric.Int64Counter
}

// NewOTelMetrics creates an OTel metrics adapter
func NewOTelMetrics() *OTelMetrics {
	return &OTelMetrics{}
}

// RegisterMetrics registers all instruments with the provided Meter
func (m *OTelMetrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	var err error

	m.dispatchedTotal, err = meter.Int64Counter(
		"updates_dispatched_total",
		metric.WithDescription("Total number of dispatched updates by outcome"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return err
	}

	m.evictedTotal, err = meter.Int64Counter(
		"updates_evicted_total",
		metric.WithDescription("Total number of queue overflow evictions"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

// RecordDispatch counts one dispatch attempt
func (m *OTelMetrics) RecordDispatch(ctx context.Context, moduleID string, outcome Outcome) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.registered {
		return
	}
	m.dispatchedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("module", moduleID),
		attribute.String("outcome", string(outcome)),
	))
}

// RecordEviction counts one queue overflow eviction
func (m *OTelMetrics) RecordEviction(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.registered {
		return
	}
	m.evictedTotal.Add(ctx, 1)
}
