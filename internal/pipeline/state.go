package pipeline

import "log/slog"

// State is the tracking mode driving frame rendering.
type State int

const (
	// StateNoTrack renders the whole-frame fallback effect; no usable
	// landmarks are held.
	StateNoTrack State = iota
	// StateTracking renders the full region pipeline from the held
	// landmark pose.
	StateTracking
	// StateDegraded renders the fallback after repeated detector
	// failures. The state latches: only an explicit Reset leaves it.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateNoTrack:
		return "no_track"
	case StateTracking:
		return "tracking"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// DefaultFailureThreshold is the number of consecutive detector
// invocation failures that trips the degraded state.
const DefaultFailureThreshold = 3

// tracker owns the state transitions and the consecutive-failure
// counter. "No face found" is a normal result and never counts as a
// failure; only detector invocation errors do.
type tracker struct {
	state     State
	failures  int
	threshold int
}

func newTracker(threshold int) *tracker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	return &tracker{threshold: threshold}
}

// Success records a detection that produced landmarks. The failure
// counter clears; the state moves to Tracking unless Degraded has
// latched.
func (t *tracker) Success() {
	t.failures = 0
	if t.state == StateDegraded {
		return
	}
	t.transition(StateTracking)
}

// NoFace records a "no face found" result. It is a normal outcome, so
// the failure counter clears. While a stabilized pose is still held the
// session keeps Tracking and renders from it; the state drops to
// NoTrack only when no pose exists, and never leaves Degraded once
// latched.
func (t *tracker) NoFace(held bool) {
	t.failures = 0
	if t.state == StateDegraded || held {
		return
	}
	t.transition(StateNoTrack)
}

// Fail records a detector invocation failure. Reaching the threshold of
// consecutive failures latches Degraded.
func (t *tracker) Fail() {
	t.failures++
	if t.failures >= t.threshold {
		t.transition(StateDegraded)
	}
}

// Reset clears the failure counter and returns to NoTrack. This is the
// only way out of Degraded.
func (t *tracker) Reset() {
	t.failures = 0
	t.transition(StateNoTrack)
}

func (t *tracker) State() State { return t.state }

func (t *tracker) transition(to State) {
	if t.state == to {
		return
	}
	slog.Info("tracking state changed", "from", t.state.String(), "to", to.String())
	stateTransitionsTotal.WithLabelValues(t.state.String(), to.String()).Inc()
	t.state = to
}
