package ratelimit

import (
	"sync"
	"time"
)

// bucket fixed-window counter for a single resource
//
// Each bucket carries its own mutex so that unrelated resource types never
// serialize behind one another. The critical section is bounded: a window
// check, at most one reset, one compare and one increment.
type bucket struct {
	resource    string
	limit       int64
	window      time.Duration
	count       int64
	windowStart time.Time
	mu          sync.Mutex
}

func newBucket(resource string, cfg ResourceConfig, now time.Time) *bucket {
	return &bucket{
		resource:    resource,
		limit:       cfg.Limit,
		window:      cfg.Window,
		windowStart: now,
	}
}

// allow atomic check-and-increment
//
// Window reset happens lazily on the first call past the boundary.
// Denial has no side effect: the counter is untouched.
func (b *bucket) allow(n int64, now time.Time) *Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.windowStart) >= b.window {
		b.count = 0
		b.windowStart = now
	}

	resetAt := b.windowStart.Add(b.window)

	if b.count+n <= b.limit {
		b.count += n
		return &Response{
			Allowed:   true,
			Remaining: b.limit - b.count,
			Limit:     b.limit,
			ResetAt:   resetAt,
		}
	}

	return &Response{
		Allowed:    false,
		Remaining:  b.limit - b.count,
		Limit:      b.limit,
		ResetAt:    resetAt,
		RetryAfter: resetAt.Sub(now),
	}
}

// reset clears the window state
func (b *bucket) reset(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.count = 0
	b.windowStart = now
}

// snapshot read-only view, window reset applied logically
func (b *bucket) snapshot(now time.Time) BucketSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.count
	windowStart := b.windowStart
	if now.Sub(windowStart) >= b.window {
		count = 0
		windowStart = now
	}

	return BucketSnapshot{
		Resource:      b.resource,
		Current:       count,
		Limit:         b.limit,
		WindowSeconds: int64(b.window / time.Second),
		ResetAt:       windowStart.Add(b.window),
		Window:        b.window,
	}
}
