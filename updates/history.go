package updates

import (
	"sync"
)

// History bounded append-only ring of dispatch records
type History struct {
	records []Record
	next    int
	filled  bool
	mu      sync.RWMutex
}

// NewHistory creates a history ring with the given size
func NewHistory(size int) *History {
	if size <= 0 {
		size = 100
	}
	return &History{records: make([]Record, size)}
}

// Append adds one record, overwriting the oldest when full
func (h *History) Append(r Record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.next] = r
	h.next++
	if h.next == len(h.records) {
		h.next = 0
		h.filled = true
	}
}

// Recent returns up to n records, newest first
func (h *History) Recent(n int) []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := h.next
	if h.filled {
		total = len(h.records)
	}
	if n <= 0 || n > total {
		n = total
	}

	out := make([]Record, 0, n)
	idx := h.next - 1
	for i := 0; i < n; i++ {
		if idx < 0 {
			idx = len(h.records) - 1
		}
		out = append(out, h.records[idx])
		idx--
	}
	return out
}

// Len returns the number of stored records
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.filled {
		return len(h.records)
	}
	return h.next
}
