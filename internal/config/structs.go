//nolint:lll
package config

// Config represents the complete configuration for the uvcam application.
// It includes settings for all commands (image, run) and supports loading
// from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Render pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Landmark detector configuration
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector" json:"detector"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Metrics exposition
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// PipelineConfig contains render loop and effect settings.
type PipelineConfig struct {
	TargetFPS         int     `mapstructure:"target_fps" yaml:"target_fps" json:"target_fps"`
	DetectionFPS      int     `mapstructure:"detection_fps" yaml:"detection_fps" json:"detection_fps"`
	FailureThreshold  int     `mapstructure:"failure_threshold" yaml:"failure_threshold" json:"failure_threshold"`
	LandmarkSmoothing float64 `mapstructure:"landmark_smoothing" yaml:"landmark_smoothing" json:"landmark_smoothing"`
	TemporalSmoothing float64 `mapstructure:"temporal_smoothing" yaml:"temporal_smoothing" json:"temporal_smoothing"`

	// RegionsFile optionally overlays the built-in landmark region table.
	RegionsFile string `mapstructure:"regions_file" yaml:"regions_file" json:"regions_file"`

	Mask       MaskConfig       `mapstructure:"mask" yaml:"mask" json:"mask"`
	Feather    FeatherConfig    `mapstructure:"feather" yaml:"feather" json:"feather"`
	Remap      RemapConfig      `mapstructure:"remap" yaml:"remap" json:"remap"`
	Compositor CompositorConfig `mapstructure:"compositor" yaml:"compositor" json:"compositor"`
}

// DetectorConfig contains face landmark detection settings.
type DetectorConfig struct {
	ModelPath              string  `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	MaxFaces               int     `mapstructure:"max_faces" yaml:"max_faces" json:"max_faces"`
	RefineLandmarks        bool    `mapstructure:"refine_landmarks" yaml:"refine_landmarks" json:"refine_landmarks"`
	MinDetectionConfidence float64 `mapstructure:"min_detection_confidence" yaml:"min_detection_confidence" json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `mapstructure:"min_tracking_confidence" yaml:"min_tracking_confidence" json:"min_tracking_confidence"`
	NumThreads             int     `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
}

// MaskConfig contains region mask construction settings.
type MaskConfig struct {
	EyeFalloff            float64 `mapstructure:"eye_falloff" yaml:"eye_falloff" json:"eye_falloff"`
	LipFalloff            float64 `mapstructure:"lip_falloff" yaml:"lip_falloff" json:"lip_falloff"`
	BrowFalloff           float64 `mapstructure:"brow_falloff" yaml:"brow_falloff" json:"brow_falloff"`
	HairFalloff           float64 `mapstructure:"hair_falloff" yaml:"hair_falloff" json:"hair_falloff"`
	FeatureClaimThreshold float64 `mapstructure:"feature_claim_threshold" yaml:"feature_claim_threshold" json:"feature_claim_threshold"`
	HairClaimThreshold    float64 `mapstructure:"hair_claim_threshold" yaml:"hair_claim_threshold" json:"hair_claim_threshold"`
	SmoothStride          int     `mapstructure:"smooth_stride" yaml:"smooth_stride" json:"smooth_stride"`
}

// FeatherConfig contains edge feathering settings.
type FeatherConfig struct {
	DefaultWidth float64 `mapstructure:"default_width" yaml:"default_width" json:"default_width"`
}

// RemapConfig contains color remap branch thresholds.
type RemapConfig struct {
	SkinBrightness      float64 `mapstructure:"skin_brightness" yaml:"skin_brightness" json:"skin_brightness"`
	EyeBrightness       float64 `mapstructure:"eye_brightness" yaml:"eye_brightness" json:"eye_brightness"`
	SunscreenBrightness float64 `mapstructure:"sunscreen_brightness" yaml:"sunscreen_brightness" json:"sunscreen_brightness"`
	SunscreenSaturation float64 `mapstructure:"sunscreen_saturation" yaml:"sunscreen_saturation" json:"sunscreen_saturation"`
}

// CompositorConfig contains compositing and finishing settings.
type CompositorConfig struct {
	BackgroundDarken     float64 `mapstructure:"background_darken" yaml:"background_darken" json:"background_darken"`
	BackgroundDesaturate float64 `mapstructure:"background_desaturate" yaml:"background_desaturate" json:"background_desaturate"`
	SoftenBlend          float64 `mapstructure:"soften_blend" yaml:"soften_blend" json:"soften_blend"`
	VignetteStrength     float64 `mapstructure:"vignette_strength" yaml:"vignette_strength" json:"vignette_strength"`
}

// OutputConfig contains output settings for the file-based commands.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	Dir    string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

// MetricsConfig contains Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr" json:"addr"`
}
