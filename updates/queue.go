package updates

import (
	"container/heap"
	"sync"
	"sync/atomic"
)

// Queue bounded, coalescing priority queue of admitted-pending requests
//
// Ordering: priority descending, then RequestedAt ascending (FIFO within a
// priority class, so same-priority items cannot starve each other).
// Coalescing: at most one pending entry per key; a newer request for a
// pending key replaces its payload, priority, trigger, and timestamp.
// Overflow: the worst-ranked pending entry is evicted and counted, never
// silently dropped.
type Queue struct {
	capacity  int
	items     requestHeap
	byKey     map[Key]*queueItem
	seq       uint64
	evictions int64
	coalesced int64
	mu        sync.Mutex
}

// queueItem heap entry
type queueItem struct {
	req   *Request
	seq   uint64 // tie-break within identical timestamps
	index int
}

// NewQueue creates a queue with the given capacity
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 100
	}
	return &Queue{
		capacity: capacity,
		items:    make(requestHeap, 0, capacity),
		byKey:    make(map[Key]*queueItem),
	}
}

// Enqueue adds or coalesces a request
//
// Returns true when the request is pending afterwards (inserted or merged);
// false when the queue was full and this request ranked worst and was
// immediately evicted.
func (q *Queue) Enqueue(req *Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Coalesce: one pending entry per key
	if existing, ok := q.byKey[req.Key()]; ok {
		existing.req = req
		q.seq++
		existing.seq = q.seq
		heap.Fix(&q.items, existing.index)
		atomic.AddInt64(&q.coalesced, 1)
		return true
	}

	q.seq++
	item := &queueItem{req: req, seq: q.seq}
	heap.Push(&q.items, item)
	q.byKey[req.Key()] = item

	if len(q.items) <= q.capacity {
		return true
	}

	// Overflow: evict the worst-ranked entry
	worst := q.worstLocked()
	heap.Remove(&q.items, worst.index)
	delete(q.byKey, worst.req.Key())
	atomic.AddInt64(&q.evictions, 1)

	return worst != item
}

// DequeueNext pops the best-ranked pending request
func (q *Queue) DequeueNext() (*Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}

	item := heap.Pop(&q.items).(*queueItem)
	delete(q.byKey, item.req.Key())
	return item.req, true
}

// Len returns the number of pending requests
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Evictions returns the overflow eviction count
func (q *Queue) Evictions() int64 {
	return atomic.LoadInt64(&q.evictions)
}

// Coalesced returns the number of merged duplicate-key requests
func (q *Queue) Coalesced() int64 {
	return atomic.LoadInt64(&q.coalesced)
}

// worstLocked finds the entry to evict on overflow (lock held):
// lowest priority first, then the youngest request within that priority
func (q *Queue) worstLocked() *queueItem {
	worst := q.items[0]
	for _, item := range q.items[1:] {
		if item.ranksWorseThan(worst) {
			worst = item
		}
	}
	return worst
}

// ranksWorseThan reports whether a should be evicted before b
func (a *queueItem) ranksWorseThan(b *queueItem) bool {
	if a.req.Priority != b.req.Priority {
		return a.req.Priority < b.req.Priority
	}
	if !a.req.RequestedAt.Equal(b.req.RequestedAt) {
		return a.req.RequestedAt.After(b.req.RequestedAt)
	}
	return a.seq > b.seq
}

// requestHeap container/heap implementation
type requestHeap []*queueItem

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].req.Priority != h[j].req.Priority {
		return h[i].req.Priority > h[j].req.Priority
	}
	if !h[i].req.RequestedAt.Equal(h[j].req.RequestedAt) {
		return h[i].req.RequestedAt.Before(h[j].req.RequestedAt)
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *requestHeap) Push(x interface{}) {
	item := x.(*queueItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *requestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}
