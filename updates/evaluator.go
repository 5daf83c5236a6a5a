package updates

import (
	"fmt"
	"time"

	"github.com/talentmesh/go-talentmesh-core/mode"
)

// Evaluation admission decision with its reason (observability, logs)
type Evaluation struct {
	Decision Decision
	Reason   string
}

// Evaluator admits, defers, or rejects update requests
//
// Per-trigger policy over the update cache and the current system mode.
// Non-blocking: bounded lock-free reads plus one cache lookup.
type Evaluator struct {
	config    Config
	cache     *Cache
	modeCtrl  *mode.Controller
	intervals *IntervalCalculator
	nowFunc   func() time.Time
}

// EvaluatorOption evaluator option
type EvaluatorOption func(*Evaluator)

// WithEvaluatorNowFunc injects a clock (tests)
func WithEvaluatorNowFunc(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) { e.nowFunc = now }
}

// NewEvaluator creates a trigger evaluator
func NewEvaluator(cfg Config, cache *Cache, modeCtrl *mode.Controller, intervals *IntervalCalculator, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		config:    cfg,
		cache:     cache,
		modeCtrl:  modeCtrl,
		intervals: intervals,
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate decides the fate of one request
//
// Defer means "not yet due, retry later, no error"; Reject means "policy
// violation, do not immediately retry". An unknown module is a programmer
// error and surfaces as an error, not a decision.
func (e *Evaluator) Evaluate(req *Request) (Evaluation, error) {
	if !req.Trigger.Valid() {
		return Evaluation{}, fmt.Errorf("%w: %q", ErrInvalidTrigger, req.Trigger)
	}

	enabled, err := e.modeCtrl.ModuleEnabled(req.ModuleID)
	if err != nil {
		return Evaluation{}, err
	}
	if !enabled {
		return Evaluation{DecisionRejected, "module disabled under current mode"}, nil
	}

	entry, found := e.cache.Get(req.Key())
	now := e.nowFunc()

	switch req.Trigger {
	case TriggerUserRequest:
		// Always admitted: explicit user intent bypasses interval and
		// cooldown (rate limiting and mode gating still applied upstream)
		return Evaluation{DecisionAdmitted, "user request"}, nil

	case TriggerDataChange:
		if !found {
			return Evaluation{DecisionAdmitted, "first dispatch for key"}, nil
		}
		delta := fingerprintOf(req.Payload).delta(entry.Fingerprint)
		if delta >= e.config.SignificanceThreshold {
			return Evaluation{DecisionAdmitted, fmt.Sprintf("significant change: %.1f%%", delta*100)}, nil
		}
		return Evaluation{DecisionRejected, fmt.Sprintf("change below significance threshold: %.1f%%", delta*100)}, nil

	case TriggerSystemEvent:
		if !found || now.Sub(entry.LastDispatched) >= e.config.SystemEventMinInterval {
			return Evaluation{DecisionAdmitted, "minimum interval elapsed"}, nil
		}
		return Evaluation{DecisionDeferred, "system event inside minimum interval"}, nil

	case TriggerPerformanceAlert:
		if e.modeCtrl.Current().IsDegraded() {
			return Evaluation{DecisionRejected, "performance alerts suppressed under degraded mode"}, nil
		}
		return Evaluation{DecisionAdmitted, "performance alert"}, nil

	case TriggerMLInsight:
		if !found || now.Sub(entry.LastDispatched) >= e.config.MLInsightCooldown {
			return Evaluation{DecisionAdmitted, "cooldown elapsed"}, nil
		}
		return Evaluation{DecisionRejected, "ml insight inside cooldown"}, nil

	case TriggerTimeBased:
		effective, ok := e.intervals.Effective(req.ModuleID, req.UpdateType)
		if !ok {
			return Evaluation{DecisionDeferred, "scheduling suspended under emergency"}, nil
		}
		if !found || now.Sub(entry.LastDispatched) >= effective {
			return Evaluation{DecisionAdmitted, "effective interval elapsed"}, nil
		}
		return Evaluation{DecisionDeferred, "inside effective interval"}, nil
	}

	return Evaluation{}, fmt.Errorf("%w: %q", ErrInvalidTrigger, req.Trigger)
}
