// Package pipeline drives the per-frame effect: landmark detection and
// smoothing, region mask construction, color remapping, compositing and
// the fixed-rate render loop with its tracking state machine.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/parsaforughi/pixxel-uv-effect/internal/compositor"
	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
	"github.com/parsaforughi/pixxel-uv-effect/internal/mask"
	"github.com/parsaforughi/pixxel-uv-effect/internal/provider"
	"github.com/parsaforughi/pixxel-uv-effect/internal/remap"
)

// Config holds configuration for the effect pipeline and its components.
type Config struct {
	// TargetFPS is the fixed render rate. DetectionFPS bounds how often
	// the detector is admitted a frame; rendering never waits for it.
	TargetFPS    int
	DetectionFPS int

	// FailureThreshold is the consecutive detector failure count that
	// latches the degraded state.
	FailureThreshold int

	// LandmarkSmoothing and TemporalSmoothing are the EMA weights on
	// history for landmark positions and remapped colors respectively.
	LandmarkSmoothing float64
	TemporalSmoothing float64

	Mask       mask.Config
	Feather    mask.FeatherConfig
	Remap      remap.Config
	Compositor compositor.Config
	Provider   provider.Config
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		TargetFPS:         30,
		DetectionFPS:      15,
		FailureThreshold:  DefaultFailureThreshold,
		LandmarkSmoothing: landmark.DefaultSmoothing,
		TemporalSmoothing: remap.DefaultTemporalSmoothing,
		Mask:              mask.DefaultConfig(),
		Feather:           mask.DefaultFeatherConfig(),
		Remap:             remap.DefaultConfig(),
		Compositor:        compositor.DefaultConfig(),
		Provider:          provider.DefaultConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg      Config
	provider provider.Provider
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithProvider sets the landmark provider instance directly, bypassing
// model-path construction.
func (b *Builder) WithProvider(p provider.Provider) *Builder {
	b.provider = p
	return b
}

// WithModelPath sets the face mesh model path for the default provider.
func (b *Builder) WithModelPath(path string) *Builder {
	if path != "" {
		b.cfg.Provider.ModelPath = path
	}
	return b
}

// WithTargetFPS sets the fixed render rate.
func (b *Builder) WithTargetFPS(fps int) *Builder {
	if fps > 0 {
		b.cfg.TargetFPS = fps
	}
	return b
}

// WithDetectionFPS bounds detector admission independently of the
// render rate.
func (b *Builder) WithDetectionFPS(fps int) *Builder {
	if fps > 0 {
		b.cfg.DetectionFPS = fps
	}
	return b
}

// WithFailureThreshold sets the consecutive failure count that latches
// the degraded state.
func (b *Builder) WithFailureThreshold(n int) *Builder {
	if n > 0 {
		b.cfg.FailureThreshold = n
	}
	return b
}

// WithLandmarkSmoothing sets the EMA weight on landmark history.
func (b *Builder) WithLandmarkSmoothing(alpha float64) *Builder {
	b.cfg.LandmarkSmoothing = alpha
	return b
}

// WithTemporalSmoothing sets the EMA weight on remapped color history.
func (b *Builder) WithTemporalSmoothing(alpha float64) *Builder {
	b.cfg.TemporalSmoothing = alpha
	return b
}

// WithRegionDefinitions loads landmark region overlays from a YAML file
// and installs the merged table.
func (b *Builder) WithRegionDefinitions(path string) (*Builder, error) {
	if path == "" {
		return b, nil
	}
	defs, err := landmark.LoadDefinitions(path)
	if err != nil {
		return b, fmt.Errorf("pipeline: region definitions: %w", err)
	}
	b.cfg.Mask.Regions = defs
	return b, nil
}

// Build validates the configuration and assembles the pipeline. A
// provider set via WithProvider wins; otherwise a model path must be
// configured and the ONNX provider is constructed from it.
func (b *Builder) Build() (*Pipeline, error) {
	if b.cfg.TargetFPS <= 0 {
		return nil, errors.New("pipeline: target fps must be positive")
	}
	if b.cfg.DetectionFPS <= 0 {
		b.cfg.DetectionFPS = b.cfg.TargetFPS
	}

	p := b.provider
	if p == nil {
		if b.cfg.Provider.ModelPath == "" {
			return nil, errors.New("pipeline: no landmark provider configured")
		}
		onnx, err := provider.NewONNX(b.cfg.Provider)
		if err != nil {
			return nil, err
		}
		p = onnx
	}

	slog.Info("pipeline assembled",
		"target_fps", b.cfg.TargetFPS,
		"detection_fps", b.cfg.DetectionFPS,
		"failure_threshold", b.cfg.FailureThreshold)

	return &Pipeline{
		cfg:        b.cfg,
		provider:   p,
		landmarks:  landmark.NewStabilizer(b.cfg.LandmarkSmoothing),
		temporal:   remap.NewTemporalStabilizer(b.cfg.TemporalSmoothing),
		masks:      mask.NewBuilder(b.cfg.Mask),
		feather:    mask.NewFeather(b.cfg.Feather),
		remapper:   remap.NewRemapper(b.cfg.Remap),
		compositor: compositor.NewCompositor(b.cfg.Compositor),
		tracker:    newTracker(b.cfg.FailureThreshold),
		results:    make(chan detection, 1),
	}, nil
}

// detection carries one detector result from the worker goroutine back
// to the render loop.
type detection struct {
	set      landmark.Set
	err      error
	duration time.Duration
}

// Pipeline holds the per-session effect state. Rendering runs on one
// goroutine; detection runs on at most one worker at a time and hands
// its result back through the results channel.
type Pipeline struct {
	cfg        Config
	provider   provider.Provider
	landmarks  *landmark.Stabilizer
	temporal   *remap.TemporalStabilizer
	masks      *mask.Builder
	feather    *mask.Feather
	remapper   *remap.Remapper
	compositor *compositor.Compositor

	mu         sync.Mutex
	tracker    *tracker
	inFlight   bool
	lastDetect time.Time
	closed     bool

	results chan detection
}

// State reports the current tracking state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.State()
}

// Reset clears all per-session state: tracking returns to NoTrack (the
// only exit from Degraded), and both smoothing histories are dropped.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracker.Reset()
	p.landmarks.Reset()
	p.temporal.Reset()
}

// Close releases the provider. Close never awaits an in-flight detector
// call: its result, when it eventually lands, is discarded and the
// provider released then.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	inFlight := p.inFlight
	p.mu.Unlock()

	if inFlight {
		// the worker still owns a provider call; hand teardown to a
		// drain goroutine instead of blocking the caller on it
		go func() {
			<-p.results
			detectionsTotal.WithLabelValues("discarded").Inc()
			if err := p.provider.Close(); err != nil {
				slog.Warn("provider close failed after draining late result", "error", err)
			}
		}()
		return nil
	}
	if err := p.provider.Close(); err != nil {
		return fmt.Errorf("pipeline: close provider: %w", err)
	}
	return nil
}
