// Package loadmon provides periodic load sampling and classification
//
// Design philosophy:
// - A background gocron job samples system indicators on a fixed cadence
// - Classification is a pure function of a moving-average window of samples
// - Thresholds and weights are configuration, never hard-coded contracts
// - Consumers (the mode controller) subscribe to classified levels
package loadmon

import (
	"time"
)

// Level discrete load level
type Level int

const (
	// LevelNormal composite score below the high-load threshold
	LevelNormal Level = iota

	// LevelHighLoad elevated pressure, adaptive intervals stretch
	LevelHighLoad

	// LevelCritical downstream capacity at risk
	LevelCritical

	// LevelEmergency only essential work should proceed
	LevelEmergency
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelNormal:
		return "Normal"
	case LevelHighLoad:
		return "HighLoad"
	case LevelCritical:
		return "Critical"
	case LevelEmergency:
		return "Emergency"
	default:
		return "Unknown"
	}
}

// Sample one observation of the system indicators
type Sample struct {
	Timestamp  time.Time
	CPU        float64 // 0.0-1.0
	Memory     float64 // 0.0-1.0
	ActiveOps  int64
	QueueDepth int64
	Composite  float64 // weighted utilization score, 0.0-1.0+
}

// Classification result of classifying a smoothed sample window
type Classification struct {
	Level   Level
	Score   float64 // smoothed composite score
	Sampled time.Time
}

// Subscriber receives every classification produced by the monitor
type Subscriber func(Classification)
