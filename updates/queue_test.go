package updates

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(moduleID, updateType string, trigger Trigger, priority Priority, at time.Time) *Request {
	return &Request{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		UpdateType:  updateType,
		Trigger:     trigger,
		Priority:    priority,
		RequestedAt: at,
	}
}

func TestQueue_PriorityOrdering(t *testing.T) {
	q := NewQueue(10)
	base := time.Now()

	q.Enqueue(newRequest("a", "t", TriggerUserRequest, PriorityLow, base))
	q.Enqueue(newRequest("b", "t", TriggerUserRequest, PriorityCritical, base.Add(time.Second)))
	q.Enqueue(newRequest("c", "t", TriggerUserRequest, PriorityNormal, base.Add(2*time.Second)))
	q.Enqueue(newRequest("d", "t", TriggerUserRequest, PriorityHigh, base.Add(3*time.Second)))

	var order []string
	for {
		req, ok := q.DequeueNext()
		if !ok {
			break
		}
		order = append(order, req.ModuleID)
	}

	assert.Equal(t, []string{"b", "d", "c", "a"}, order)
}

func TestQueue_FIFOWithinPriority(t *testing.T) {
	q := NewQueue(10)
	base := time.Now()

	// 同优先级按 RequestedAt 先进先出，防止饿死
	for i := 0; i < 5; i++ {
		q.Enqueue(newRequest(fmt.Sprintf("m%d", i), "t", TriggerUserRequest, PriorityNormal, base.Add(time.Duration(i)*time.Millisecond)))
	}

	for i := 0; i < 5; i++ {
		req, ok := q.DequeueNext()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("m%d", i), req.ModuleID)
	}
}

func TestQueue_Coalescing(t *testing.T) {
	q := NewQueue(10)
	base := time.Now()

	first := newRequest("campaigns", "metrics", TriggerDataChange, PriorityNormal, base)
	first.Payload = 100.0
	second := newRequest("campaigns", "metrics", TriggerDataChange, PriorityHigh, base.Add(time.Second))
	second.Payload = 200.0

	assert.True(t, q.Enqueue(first))
	assert.True(t, q.Enqueue(second))

	// 同 key 合并：队列中只有一个条目，取较新请求的载荷与优先级
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, int64(1), q.Coalesced())

	req, ok := q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, 200.0, req.Payload)
	assert.Equal(t, PriorityHigh, req.Priority)

	_, ok = q.DequeueNext()
	assert.False(t, ok)
}

// 规格场景：容量100，150个不同 key 的 Normal 请求，恰好淘汰50个并计数
func TestQueue_OverflowEviction(t *testing.T) {
	q := NewQueue(100)
	base := time.Now()

	for i := 0; i < 150; i++ {
		q.Enqueue(newRequest(fmt.Sprintf("m%d", i), "t", TriggerUserRequest, PriorityNormal, base.Add(time.Duration(i)*time.Millisecond)))
	}

	assert.Equal(t, 100, q.Len())
	assert.Equal(t, int64(50), q.Evictions())
}

func TestQueue_EvictsLowestPriorityTail(t *testing.T) {
	q := NewQueue(2)
	base := time.Now()

	q.Enqueue(newRequest("a", "t", TriggerUserRequest, PriorityHigh, base))
	q.Enqueue(newRequest("b", "t", TriggerUserRequest, PriorityLow, base.Add(time.Second)))

	// 溢出时淘汰最低优先级中最晚到的条目（此处为 b）
	ok := q.Enqueue(newRequest("c", "t", TriggerUserRequest, PriorityNormal, base.Add(2*time.Second)))
	assert.True(t, ok)
	assert.Equal(t, int64(1), q.Evictions())

	req1, _ := q.DequeueNext()
	req2, _ := q.DequeueNext()
	assert.Equal(t, "a", req1.ModuleID)
	assert.Equal(t, "c", req2.ModuleID)
}

func TestQueue_NewLowestRequestBounces(t *testing.T) {
	q := NewQueue(1)
	base := time.Now()

	q.Enqueue(newRequest("a", "t", TriggerUserRequest, PriorityHigh, base))

	// 新请求本身就是最差的：被立即淘汰，Enqueue 返回 false，但依然计数
	ok := q.Enqueue(newRequest("b", "t", TriggerUserRequest, PriorityLow, base.Add(time.Second)))
	assert.False(t, ok)
	assert.Equal(t, int64(1), q.Evictions())
	assert.Equal(t, 1, q.Len())
}

func TestHistory_Ring(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Append(Record{Key: Key{ModuleID: fmt.Sprintf("m%d", i)}})
	}

	assert.Equal(t, 3, h.Len())

	recent := h.Recent(0)
	require.Len(t, recent, 3)
	// 最新在前，最老的两条已被覆盖
	assert.Equal(t, "m4", recent[0].Key.ModuleID)
	assert.Equal(t, "m3", recent[1].Key.ModuleID)
	assert.Equal(t, "m2", recent[2].Key.ModuleID)
}
