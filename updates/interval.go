package updates

import (
	"time"

	"github.com/talentmesh/go-talentmesh-core/mode"
)

// IntervalCalculator computes the effective minimum re-check interval for a
// (module, update type) pair: base interval × current mode multiplier.
//
// Pure function of configuration plus the current mode; no mutable state of
// its own beyond reading the mode controller.
type IntervalCalculator struct {
	config   Config
	modeCtrl *mode.Controller
}

// NewIntervalCalculator creates an interval calculator
func NewIntervalCalculator(cfg Config, modeCtrl *mode.Controller) *IntervalCalculator {
	return &IntervalCalculator{config: cfg, modeCtrl: modeCtrl}
}

// Effective returns the effective interval for the key
//
// The second return value is false when scheduling is suspended: Emergency
// mode suspends every non-essential module's time-based refresh entirely.
// Essential modules fall back to the Critical multiplier.
func (ic *IntervalCalculator) Effective(moduleID, updateType string) (time.Duration, bool) {
	base := ic.config.BaseInterval(moduleID, updateType)

	var multiplier float64
	switch ic.modeCtrl.Current() {
	case mode.ModeNormal:
		multiplier = ic.config.Multipliers.Normal
	case mode.ModeHighLoad:
		multiplier = ic.config.Multipliers.HighLoad
	case mode.ModeCritical:
		multiplier = ic.config.Multipliers.Critical
	case mode.ModeEmergency:
		if !ic.modeCtrl.IsEssential(moduleID) {
			return 0, false
		}
		multiplier = ic.config.Multipliers.Critical
	default:
		multiplier = ic.config.Multipliers.Normal
	}

	return time.Duration(float64(base) * multiplier), true
}
