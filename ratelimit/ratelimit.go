// Package ratelimit provides process-wide fixed-window rate limiting
//
// Design philosophy:
// - Standalone package, depends only on the logger component
// - Event-driven, the application layer can subscribe to all events
// - Metrics exposed, application layer can access real-time data
// - In-memory authority only: counters never survive a restart
// - The resource set is fixed at construction; unknown resources are a
//   configuration error, surfaced at startup rather than at call time
package ratelimit

import (
	"context"
	"time"
)

// RateLimiter core interface
type RateLimiter interface {
	// Allow checks if one request for the resource is permitted
	Allow(ctx context.Context, resource string) (bool, error)

	// AllowN checks if N requests are permitted
	AllowN(ctx context.Context, resource string, n int64) (bool, error)

	// Snapshot returns the current state of every bucket
	Snapshot() []BucketSnapshot

	// GetMetrics returns the metrics snapshot for one resource
	GetMetrics(resource string) *MetricsSnapshot

	// GetEventBus obtains the event bus (for subscribing to events)
	GetEventBus() EventBus

	// Has reports whether the resource type is registered
	Has(resource string) bool

	// Reset clears the window state of a resource
	Reset(resource string)

	// Close releases resources
	Close() error
}

// Response rate limiting decision detail
type Response struct {
	// Allowed whether the request was admitted
	Allowed bool

	// Remaining quota left in the current window
	Remaining int64

	// Limit total quota per window
	Limit int64

	// ResetAt when the current window ends
	ResetAt time.Time

	// RetryAfter suggested retry delay (valid when Allowed=false)
	RetryAfter time.Duration
}

// BucketSnapshot read-only view of one fixed-window bucket
type BucketSnapshot struct {
	Resource      string        `json:"type"`
	Current       int64         `json:"current"`
	Limit         int64         `json:"limit"`
	WindowSeconds int64         `json:"window_seconds"`
	ResetAt       time.Time     `json:"reset_at"`
	Window        time.Duration `json:"-"`
}
