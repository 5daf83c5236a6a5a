package governor

import (
	"time"

	"github.com/talentmesh/go-talentmesh-core/analytics"
	"github.com/talentmesh/go-talentmesh-core/mode"
	"github.com/talentmesh/go-talentmesh-core/ratelimit"
	"github.com/talentmesh/go-talentmesh-core/updates"
)

// Snapshot point-in-time view of the governance core
//
// 只读快照，供状态接口/仪表盘消费；各字段从各部件独立采集，
// 不追求跨部件的强一致
type Snapshot struct {
	Mode          string                     `json:"mode"`
	ModeSince     time.Time                  `json:"mode_since"`
	LoadScore     float64                    `json:"load_score"`
	ActiveOps     int64                      `json:"active_ops"`
	QueueDepth    int                        `json:"queue_depth"`
	Evictions     int64                      `json:"evictions"`
	Coalesced     int64                      `json:"coalesced"`
	RateLimits    []ratelimit.BucketSnapshot `json:"rate_limits"`
	Modules       []mode.ModuleSnapshot      `json:"modules"`
	Analytics     analytics.Snapshot         `json:"analytics"`
	RecentUpdates []updates.Record           `json:"recent_updates"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}

// GetStatusSnapshot assembles the current status snapshot
func (g *Governor) GetStatusSnapshot() Snapshot {
	return Snapshot{
		Mode:          g.modeCtrl.Current().String(),
		ModeSince:     g.modeCtrl.LastChange(),
		LoadScore:     g.monitor.LastSample().Composite,
		ActiveOps:     g.modeCtrl.TotalActiveOps(),
		QueueDepth:    g.queue.Len(),
		Evictions:     g.queue.Evictions(),
		Coalesced:     g.queue.Coalesced(),
		RateLimits:    g.limiter.Snapshot(),
		Modules:       g.modeCtrl.ModuleSnapshots(),
		Analytics:     g.coordinator.GetSnapshot(),
		RecentUpdates: g.history.Recent(20),
		GeneratedAt:   g.nowFunc(),
	}
}
