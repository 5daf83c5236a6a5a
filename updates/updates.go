// Package updates provides the demand-driven update pipeline
//
// Design philosophy:
// - Polling is replaced by admission control: a request states WHY an update
//   is wanted (its trigger), and policy decides Admit / Defer / Reject
// - Admitted requests flow through a coalescing priority queue; a single
//   dispatch loop pops them and invokes collaborator callbacks on a worker
//   pool, so a slow callback never stalls admission paths
// - Every tuning figure (significance threshold, cooldowns, multipliers)
//   is configuration, not law
package updates

import (
	"time"

	"github.com/google/uuid"
)

// Key logical update target: (module, update type)
type Key struct {
	ModuleID   string `json:"module_id"`
	UpdateType string `json:"update_type"`
}

// String returns "module:updateType"
func (k Key) String() string {
	return k.ModuleID + ":" + k.UpdateType
}

// Trigger why an update is being requested
type Trigger string

const (
	// TriggerUserRequest explicit user action; always admitted
	TriggerUserRequest Trigger = "user_request"

	// TriggerDataChange underlying data changed; admitted on significance
	TriggerDataChange Trigger = "data_change"

	// TriggerSystemEvent internal event; rate-limited by a minimum interval
	TriggerSystemEvent Trigger = "system_event"

	// TriggerPerformanceAlert load alert; suppressed under degraded modes
	TriggerPerformanceAlert Trigger = "performance_alert"

	// TriggerMLInsight predictive-analytics insight; long cooldown
	TriggerMLInsight Trigger = "ml_insight"

	// TriggerTimeBased periodic refresh; spaced by the adaptive interval
	TriggerTimeBased Trigger = "time_based"
)

// Valid reports whether the trigger is one of the recognized kinds
func (t Trigger) Valid() bool {
	switch t {
	case TriggerUserRequest, TriggerDataChange, TriggerSystemEvent,
		TriggerPerformanceAlert, TriggerMLInsight, TriggerTimeBased:
		return true
	}
	return false
}

// Priority dispatch ordering class
type Priority int

const (
	// PriorityLow lowest; first to be evicted on queue overflow
	PriorityLow Priority = iota

	// PriorityNormal default
	PriorityNormal

	// PriorityHigh jumps ahead of normal work
	PriorityHigh

	// PriorityCritical dispatched before everything else
	PriorityCritical
)

// String returns the priority name
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityNormal:
		return "Normal"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Decision admission decision for an update request
type Decision int

const (
	// DecisionAdmitted enqueued for dispatch
	DecisionAdmitted Decision = iota

	// DecisionDeferred not yet due; the caller may retry later, no error
	DecisionDeferred

	// DecisionRejected policy violation; the caller should not retry now
	DecisionRejected
)

// String returns the decision name
func (d Decision) String() string {
	switch d {
	case DecisionAdmitted:
		return "Admitted"
	case DecisionDeferred:
		return "Deferred"
	case DecisionRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Request one update request; consumed by the pipeline, never mutated
type Request struct {
	ID          uuid.UUID
	ModuleID    string
	UpdateType  string
	Trigger     Trigger
	Payload     interface{}
	Priority    Priority
	RequestedAt time.Time
}

// Key returns the request's logical target
func (r *Request) Key() Key {
	return Key{ModuleID: r.ModuleID, UpdateType: r.UpdateType}
}

// Outcome result of one dispatch attempt
type Outcome string

const (
	// OutcomeOK callback returned without error
	OutcomeOK Outcome = "ok"

	// OutcomeError callback returned an error (single-shot, no retry)
	OutcomeError Outcome = "error"

	// OutcomeTimeout callback exceeded the dispatch timeout
	OutcomeTimeout Outcome = "timeout"
)

// Record append-only history entry for one dispatch attempt
type Record struct {
	ID           uuid.UUID     `json:"id"`
	Key          Key           `json:"key"`
	Trigger      Trigger       `json:"trigger"`
	Priority     Priority      `json:"priority"`
	DispatchedAt time.Time     `json:"dispatched_at"`
	Duration     time.Duration `json:"duration"`
	Outcome      Outcome       `json:"outcome"`
}
