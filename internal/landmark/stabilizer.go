package landmark

import "log/slog"

// DefaultSmoothing is the reference EMA weight on history. Higher values
// smooth more at the cost of responsiveness.
const DefaultSmoothing = 0.75

// Stabilizer applies exponential smoothing to landmark sets across
// frames, suppressing per-frame detector jitter. It owns the EMA state
// for the lifetime of a tracking session; the caller resets it when
// tracking is lost.
//
// The stabilizer is not safe for concurrent use; under the pipeline's
// single in-flight frame model only one tick mutates it at a time.
type Stabilizer struct {
	alpha float64
	ema   Set
}

// NewStabilizer creates a stabilizer with the given smoothing constant.
// Out-of-range values fall back to DefaultSmoothing.
func NewStabilizer(alpha float64) *Stabilizer {
	if alpha < 0 || alpha >= 1 {
		alpha = DefaultSmoothing
	}
	return &Stabilizer{alpha: alpha}
}

// Stabilize folds the raw landmark set into the EMA state and returns the
// smoothed set.
//
//   - raw nil, no state: returns nil (caller must fall back).
//   - raw nil, state held: returns the last stabilized set (hold pose).
//   - first raw set: initializes state verbatim.
//   - otherwise: ema[i] = alpha*ema[i] + (1-alpha)*raw[i] componentwise.
//
// A length mismatch between raw and the held state is a contract
// violation from the detector; the stabilizer passes raw through
// untouched rather than crash.
func (s *Stabilizer) Stabilize(raw Set) Set {
	if raw == nil {
		if s.ema == nil {
			return nil
		}
		return s.ema.Clone()
	}
	if s.ema == nil {
		s.ema = raw.Clone()
		return s.ema.Clone()
	}
	if len(raw) != len(s.ema) {
		slog.Warn("landmark set length changed mid-session, skipping smoothing",
			"held", len(s.ema), "raw", len(raw))
		return raw
	}
	a := s.alpha
	for i := range s.ema {
		s.ema[i].X = a*s.ema[i].X + (1-a)*raw[i].X
		s.ema[i].Y = a*s.ema[i].Y + (1-a)*raw[i].Y
		s.ema[i].Z = a*s.ema[i].Z + (1-a)*raw[i].Z
	}
	return s.ema.Clone()
}

// Last returns the current stabilized set, or nil when uninitialized.
func (s *Stabilizer) Last() Set {
	return s.ema.Clone()
}

// Reset discards the EMA state. Called when tracking is lost so a
// reacquired face starts from its raw pose.
func (s *Stabilizer) Reset() {
	s.ema = nil
}
