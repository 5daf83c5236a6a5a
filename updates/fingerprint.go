package updates

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Fingerprinter payloads may describe their own numeric fingerprint
// (e.g. a dashboard metric exposing its headline value)
type Fingerprinter interface {
	Fingerprint() float64
}

// fingerprint comparable digest of a payload
//
// Numeric payloads carry their value and are compared by relative delta;
// everything else is hashed, and any hash change counts as a full change.
type fingerprint struct {
	numeric bool
	value   float64
	hash    uint64
}

// fingerprintOf derives the fingerprint of a payload
func fingerprintOf(payload interface{}) fingerprint {
	switch v := payload.(type) {
	case nil:
		return fingerprint{}
	case Fingerprinter:
		return fingerprint{numeric: true, value: v.Fingerprint()}
	case float64:
		return fingerprint{numeric: true, value: v}
	case float32:
		return fingerprint{numeric: true, value: float64(v)}
	case int:
		return fingerprint{numeric: true, value: float64(v)}
	case int32:
		return fingerprint{numeric: true, value: float64(v)}
	case int64:
		return fingerprint{numeric: true, value: float64(v)}
	case uint:
		return fingerprint{numeric: true, value: float64(v)}
	case uint32:
		return fingerprint{numeric: true, value: float64(v)}
	case uint64:
		return fingerprint{numeric: true, value: float64(v)}
	default:
		h := fnv.New64a()
		fmt.Fprintf(h, "%v", payload)
		return fingerprint{hash: h.Sum64()}
	}
}

// delta relative change against a previous fingerprint, 0.0-1.0+
//
// Mixed numeric/non-numeric comparisons and hash changes count as a full
// change (1.0). A previous value of zero makes any non-zero value a full
// change, since no relative base exists.
func (f fingerprint) delta(prev fingerprint) float64 {
	if f.numeric != prev.numeric {
		return 1.0
	}
	if !f.numeric {
		if f.hash == prev.hash {
			return 0
		}
		return 1.0
	}
	if prev.value == 0 {
		if f.value == 0 {
			return 0
		}
		return 1.0
	}
	return math.Abs(f.value-prev.value) / math.Abs(prev.value)
}
