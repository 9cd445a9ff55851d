package landmark

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantSet(n int, x, y, z float64) Set {
	s := make(Set, n)
	for i := range s {
		s[i] = Point{X: x, Y: y, Z: z}
	}
	return s
}

func TestStabilize_NilWithoutState(t *testing.T) {
	s := NewStabilizer(0.75)
	assert.Nil(t, s.Stabilize(nil))
}

func TestStabilize_InitializesVerbatim(t *testing.T) {
	s := NewStabilizer(0.75)
	raw := constantSet(10, 0.3, 0.4, 0.1)
	out := s.Stabilize(raw)
	require.Len(t, out, 10)
	assert.Equal(t, raw, out)
}

func TestStabilize_SteadyState(t *testing.T) {
	// Scenario: identical input twice stays identical.
	s := NewStabilizer(0.75)
	raw := constantSet(5, 0.5, 0.5, 0)
	first := s.Stabilize(raw)
	second := s.Stabilize(raw)
	assert.Equal(t, first, second)
}

func TestStabilize_HoldsLastPoseOnNil(t *testing.T) {
	s := NewStabilizer(0.75)
	raw := constantSet(5, 0.2, 0.8, 0)
	held := s.Stabilize(raw)
	out := s.Stabilize(nil)
	assert.Equal(t, held, out)
}

func TestStabilize_BlendsTowardRaw(t *testing.T) {
	s := NewStabilizer(0.75)
	s.Stabilize(constantSet(1, 0, 0, 0))
	out := s.Stabilize(constantSet(1, 1, 1, 1))
	// alpha*0 + (1-alpha)*1 = 0.25
	assert.InDelta(t, 0.25, out[0].X, 1e-9)
	assert.InDelta(t, 0.25, out[0].Y, 1e-9)
	assert.InDelta(t, 0.25, out[0].Z, 1e-9)
}

func TestStabilize_ConvergesToStepInput(t *testing.T) {
	// With alpha=0.75 the residual after n frames is 0.75^n; after 10
	// repetitions of a unit step the error must be below 6%.
	s := NewStabilizer(0.75)
	s.Stabilize(constantSet(1, 0, 0, 0))
	step := constantSet(1, 1, 0, 0)
	var out Set
	for i := 0; i < 10; i++ {
		out = s.Stabilize(step)
	}
	require.NotNil(t, out)
	assert.Less(t, math.Abs(1-out[0].X), 0.06)
}

func TestStabilize_LengthMismatchPassesThrough(t *testing.T) {
	s := NewStabilizer(0.75)
	s.Stabilize(constantSet(5, 0.5, 0.5, 0))
	raw := constantSet(7, 0.9, 0.9, 0)
	out := s.Stabilize(raw)
	assert.Equal(t, raw, out)
	// Held state must be unchanged by the malformed input.
	assert.Len(t, s.Last(), 5)
}

func TestStabilize_ReturnedSetIsACopy(t *testing.T) {
	s := NewStabilizer(0.75)
	out := s.Stabilize(constantSet(3, 0.1, 0.1, 0))
	out[0].X = 99
	assert.InDelta(t, 0.1, s.Last()[0].X, 1e-9)
}

func TestReset_ClearsState(t *testing.T) {
	s := NewStabilizer(0.75)
	s.Stabilize(constantSet(3, 0.5, 0.5, 0))
	s.Reset()
	assert.Nil(t, s.Last())
	assert.Nil(t, s.Stabilize(nil))
}

func TestNewStabilizer_InvalidAlphaUsesDefault(t *testing.T) {
	s := NewStabilizer(1.5)
	s.Stabilize(constantSet(1, 0, 0, 0))
	out := s.Stabilize(constantSet(1, 1, 0, 0))
	assert.InDelta(t, 1-DefaultSmoothing, out[0].X, 1e-9)
}
