package remap

import (
	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/mask"
)

// DefaultTemporalSmoothing is the reference weight on the previous
// frame's remapped colors.
const DefaultTemporalSmoothing = 0.7

// TemporalStabilizer blends the current frame's remapped colors with the
// previous frame's, in color space, for masked pixels only. Landmark
// jitter survives EMA smoothing as visible color flicker at mask
// boundaries; blending colors directly suppresses it at the cost of a
// little motion lag.
//
// The stabilizer owns the previous-frame color buffer for the lifetime
// of a tracking session; Reset discards it when tracking is lost.
type TemporalStabilizer struct {
	alpha float64
	prev  *frame.Buffer
}

// NewTemporalStabilizer creates a stabilizer with the given history
// weight. Out-of-range values fall back to the default.
func NewTemporalStabilizer(alpha float64) *TemporalStabilizer {
	if alpha < 0 || alpha >= 1 {
		alpha = DefaultTemporalSmoothing
	}
	return &TemporalStabilizer{alpha: alpha}
}

// Stabilize blends masked pixels of current against the previous frame
// and stores the blend as the new history. Unmasked pixels pass through
// unchanged. The first frame of a session (or a resolution change) is
// returned as-is and becomes the new history.
func (t *TemporalStabilizer) Stabilize(current *frame.Buffer, m *mask.Mask) *frame.Buffer {
	if t.prev == nil || t.prev.Width != current.Width || t.prev.Height != current.Height {
		t.prev = current.Clone()
		return current
	}

	out := current.Clone()
	a := t.alpha
	for y := 0; y < current.Height; y++ {
		for x := 0; x < current.Width; x++ {
			if m.At(x, y) <= 0 {
				continue
			}
			i := current.Offset(x, y)
			for c := 0; c < 3; c++ {
				p := float64(t.prev.Pix[i+c])
				cur := float64(current.Pix[i+c])
				out.Pix[i+c] = uint8(a*p + (1-a)*cur)
			}
		}
	}
	t.prev = out.Clone()
	return out
}

// Reset discards the previous-frame buffer. Called on tracking loss so a
// new session starts without stale history.
func (t *TemporalStabilizer) Reset() {
	t.prev = nil
}
