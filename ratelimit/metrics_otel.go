package ratelimit

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry instrumentation for the rate limit registry.
// Registers against an injected Meter; the embedding application owns the
// meter provider and export pipeline.
type OTelMetrics struct {
	registered bool
	mu         sync.RWMutex

	admittedTotal metric.Int64Counter
	deniedTotal   metric.Int64Counter
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

	m.admittedTotal, err = meter.Int64Counter(
		"ratelimit_admitted_total",
		metric.WithDescription("Total number of admitted rate limit checks"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	m.deniedTotal, err = meter.Int64Counter(
		"ratelimit_denied_total",
		metric.WithDescription("Total number of denied rate limit checks"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

// RecordAdmitted increments the admitted counter
func (m *OTelMetrics) RecordAdmitted(ctx context.Context, resource string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.registered {
		return
	}
	m.admittedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
}

// RecordDenied increments the denied counter
func (m *OTelMetrics) RecordDenied(ctx context.Context, resource string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.registered {
		return
	}
	m.deniedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
}
