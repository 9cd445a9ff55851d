// Package provider defines the landmark detector boundary. The pipeline
// depends on the Provider capability; which implementation backs it is a
// construction-time decision, never a runtime presence check.
package provider

import (
	"context"

	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
)

// Config carries the detector setup passed once at construction. An
// implementation may ignore fields it has no use for, but every
// implementation accepts the same configuration surface.
type Config struct {
	// MaxFaces is the number of faces tracked; the pipeline composites a
	// single subject.
	MaxFaces int
	// RefineLandmarks requests the detector's refined mesh around eyes
	// and lips when it supports one.
	RefineLandmarks bool
	// MinDetectionConfidence and MinTrackingConfidence are the usual
	// detector thresholds in [0,1].
	MinDetectionConfidence float64
	MinTrackingConfidence  float64
	// ModelPath locates the inference model for providers that run one.
	ModelPath string
	// NumThreads bounds intra-op parallelism for providers that run a
	// model; 0 leaves the runtime default.
	NumThreads int
}

// DefaultConfig returns the reference detector settings.
func DefaultConfig() Config {
	return Config{
		MaxFaces:               1,
		RefineLandmarks:        true,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
}

// Provider produces a landmark set for a frame. A (nil, nil) return
// means "no face found", which is a normal result, not a failure; a
// non-nil error is a detector invocation failure and is counted by the
// pipeline's failure tracking.
type Provider interface {
	Detect(ctx context.Context, buf *frame.Buffer) (landmark.Set, error)
	Close() error
}

// Static always returns the same landmark set. Used by tests and by the
// CLI when landmarks come from a file rather than a live detector.
type Static struct {
	Set landmark.Set
}

// NewStatic creates a provider pinned to one landmark set. A nil set
// yields "no face" on every frame.
func NewStatic(set landmark.Set) *Static {
	return &Static{Set: set}
}

// Detect returns the pinned set regardless of frame content.
func (s *Static) Detect(_ context.Context, _ *frame.Buffer) (landmark.Set, error) {
	return s.Set.Clone(), nil
}

// Close is a no-op.
func (s *Static) Close() error { return nil }

// Func adapts a plain function into a Provider. Used by tests to script
// detector behavior per frame.
type Func func(ctx context.Context, buf *frame.Buffer) (landmark.Set, error)

// Detect invokes the wrapped function.
func (f Func) Detect(ctx context.Context, buf *frame.Buffer) (landmark.Set, error) {
	return f(ctx, buf)
}

// Close is a no-op.
func (f Func) Close() error { return nil }
