// Package config loads and validates the application configuration from
// files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"slices"

	"github.com/parsaforughi/pixxel-uv-effect/internal/compositor"
	"github.com/parsaforughi/pixxel-uv-effect/internal/mask"
	"github.com/parsaforughi/pixxel-uv-effect/internal/pipeline"
	"github.com/parsaforughi/pixxel-uv-effect/internal/provider"
	"github.com/parsaforughi/pixxel-uv-effect/internal/remap"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"png", "jpg", "jpeg"}
)

// DefaultConfig returns the configuration with all component defaults
// applied.
func DefaultConfig() *Config {
	pcfg := pipeline.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Verbose:  false,
		Pipeline: PipelineConfig{
			TargetFPS:         pcfg.TargetFPS,
			DetectionFPS:      pcfg.DetectionFPS,
			FailureThreshold:  pcfg.FailureThreshold,
			LandmarkSmoothing: pcfg.LandmarkSmoothing,
			TemporalSmoothing: pcfg.TemporalSmoothing,
			Mask: MaskConfig{
				EyeFalloff:            pcfg.Mask.EyeFalloff,
				LipFalloff:            pcfg.Mask.LipFalloff,
				BrowFalloff:           pcfg.Mask.BrowFalloff,
				HairFalloff:           pcfg.Mask.HairFalloff,
				FeatureClaimThreshold: pcfg.Mask.FeatureClaimThreshold,
				HairClaimThreshold:    pcfg.Mask.HairClaimThreshold,
				SmoothStride:          pcfg.Mask.SmoothStride,
			},
			Feather: FeatherConfig{
				DefaultWidth: pcfg.Feather.DefaultWidth,
			},
			Remap: RemapConfig{
				SkinBrightness:      pcfg.Remap.SkinBrightness,
				EyeBrightness:       pcfg.Remap.EyeBrightness,
				SunscreenBrightness: pcfg.Remap.SunscreenBrightness,
				SunscreenSaturation: pcfg.Remap.SunscreenSaturation,
			},
			Compositor: CompositorConfig{
				BackgroundDarken:     pcfg.Compositor.BackgroundDarken,
				BackgroundDesaturate: pcfg.Compositor.BackgroundDesaturate,
				SoftenBlend:          pcfg.Compositor.SoftenBlend,
				VignetteStrength:     pcfg.Compositor.VignetteStrength,
			},
		},
		Detector: DetectorConfig{
			MaxFaces:               pcfg.Provider.MaxFaces,
			RefineLandmarks:        pcfg.Provider.RefineLandmarks,
			MinDetectionConfidence: pcfg.Provider.MinDetectionConfidence,
			MinTrackingConfidence:  pcfg.Provider.MinTrackingConfidence,
		},
		Output: OutputConfig{
			Format: "png",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "localhost:9100",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q (valid: %v)", c.LogLevel, validLogLevels)
	}
	if c.Pipeline.TargetFPS <= 0 || c.Pipeline.TargetFPS > 240 {
		return fmt.Errorf("target_fps must be in 1..240, got %d", c.Pipeline.TargetFPS)
	}
	if c.Pipeline.DetectionFPS < 0 {
		return fmt.Errorf("detection_fps must not be negative, got %d", c.Pipeline.DetectionFPS)
	}
	if c.Pipeline.DetectionFPS > c.Pipeline.TargetFPS {
		return fmt.Errorf("detection_fps %d exceeds target_fps %d",
			c.Pipeline.DetectionFPS, c.Pipeline.TargetFPS)
	}
	if c.Pipeline.FailureThreshold < 0 {
		return fmt.Errorf("failure_threshold must not be negative, got %d", c.Pipeline.FailureThreshold)
	}
	if a := c.Pipeline.LandmarkSmoothing; a < 0 || a >= 1 {
		return fmt.Errorf("landmark_smoothing must be in [0,1), got %v", a)
	}
	if a := c.Pipeline.TemporalSmoothing; a < 0 || a >= 1 {
		return fmt.Errorf("temporal_smoothing must be in [0,1), got %v", a)
	}
	if v := c.Detector.MinDetectionConfidence; v < 0 || v > 1 {
		return fmt.Errorf("min_detection_confidence must be in [0,1], got %v", v)
	}
	if v := c.Detector.MinTrackingConfidence; v < 0 || v > 1 {
		return fmt.Errorf("min_tracking_confidence must be in [0,1], got %v", v)
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format %q (valid: %v)", c.Output.Format, validFormats)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	return nil
}

// ToPipelineConfig converts the application configuration into the
// pipeline's component configuration.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.TargetFPS = c.Pipeline.TargetFPS
	cfg.DetectionFPS = c.Pipeline.DetectionFPS
	cfg.FailureThreshold = c.Pipeline.FailureThreshold
	cfg.LandmarkSmoothing = c.Pipeline.LandmarkSmoothing
	cfg.TemporalSmoothing = c.Pipeline.TemporalSmoothing
	cfg.Mask = c.toMaskConfig()
	cfg.Feather = c.toFeatherConfig()
	cfg.Remap = c.toRemapConfig()
	cfg.Compositor = c.toCompositorConfig()
	cfg.Provider = c.toProviderConfig()
	return cfg
}

func (c *Config) toMaskConfig() mask.Config {
	cfg := mask.DefaultConfig()
	cfg.EyeFalloff = c.Pipeline.Mask.EyeFalloff
	cfg.LipFalloff = c.Pipeline.Mask.LipFalloff
	cfg.BrowFalloff = c.Pipeline.Mask.BrowFalloff
	cfg.HairFalloff = c.Pipeline.Mask.HairFalloff
	cfg.FeatureClaimThreshold = c.Pipeline.Mask.FeatureClaimThreshold
	cfg.HairClaimThreshold = c.Pipeline.Mask.HairClaimThreshold
	cfg.SmoothStride = c.Pipeline.Mask.SmoothStride
	return cfg
}

func (c *Config) toFeatherConfig() mask.FeatherConfig {
	cfg := mask.DefaultFeatherConfig()
	if c.Pipeline.Feather.DefaultWidth > 0 {
		cfg.DefaultWidth = c.Pipeline.Feather.DefaultWidth
	}
	return cfg
}

func (c *Config) toRemapConfig() remap.Config {
	cfg := remap.DefaultConfig()
	cfg.SkinBrightness = c.Pipeline.Remap.SkinBrightness
	cfg.EyeBrightness = c.Pipeline.Remap.EyeBrightness
	cfg.SunscreenBrightness = c.Pipeline.Remap.SunscreenBrightness
	cfg.SunscreenSaturation = c.Pipeline.Remap.SunscreenSaturation
	return cfg
}

func (c *Config) toCompositorConfig() compositor.Config {
	cfg := compositor.DefaultConfig()
	cfg.BackgroundDarken = c.Pipeline.Compositor.BackgroundDarken
	cfg.BackgroundDesaturate = c.Pipeline.Compositor.BackgroundDesaturate
	cfg.SoftenBlend = c.Pipeline.Compositor.SoftenBlend
	cfg.VignetteStrength = c.Pipeline.Compositor.VignetteStrength
	return cfg
}

func (c *Config) toProviderConfig() provider.Config {
	cfg := provider.DefaultConfig()
	cfg.ModelPath = c.Detector.ModelPath
	cfg.MaxFaces = c.Detector.MaxFaces
	cfg.RefineLandmarks = c.Detector.RefineLandmarks
	cfg.MinDetectionConfidence = c.Detector.MinDetectionConfidence
	cfg.MinTrackingConfidence = c.Detector.MinTrackingConfidence
	cfg.NumThreads = c.Detector.NumThreads
	return cfg
}
