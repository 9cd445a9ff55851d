package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "uvcam"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "UVCAM"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	// Use the global viper instance to ensure flag bindings work
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables, and sets
// defaults. It returns the loaded configuration and any error encountered.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// a missing config file is fine, defaults and env vars apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// Get returns a value from the configuration.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/uvcam")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "uvcam"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "uvcam"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	// dots and dashes become underscores in env var names
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	// Global settings
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	// Pipeline defaults
	l.v.SetDefault("pipeline.target_fps", defaults.Pipeline.TargetFPS)
	l.v.SetDefault("pipeline.detection_fps", defaults.Pipeline.DetectionFPS)
	l.v.SetDefault("pipeline.failure_threshold", defaults.Pipeline.FailureThreshold)
	l.v.SetDefault("pipeline.landmark_smoothing", defaults.Pipeline.LandmarkSmoothing)
	l.v.SetDefault("pipeline.temporal_smoothing", defaults.Pipeline.TemporalSmoothing)
	l.v.SetDefault("pipeline.regions_file", defaults.Pipeline.RegionsFile)

	l.v.SetDefault("pipeline.mask.eye_falloff", defaults.Pipeline.Mask.EyeFalloff)
	l.v.SetDefault("pipeline.mask.lip_falloff", defaults.Pipeline.Mask.LipFalloff)
	l.v.SetDefault("pipeline.mask.brow_falloff", defaults.Pipeline.Mask.BrowFalloff)
	l.v.SetDefault("pipeline.mask.hair_falloff", defaults.Pipeline.Mask.HairFalloff)
	l.v.SetDefault("pipeline.mask.feature_claim_threshold", defaults.Pipeline.Mask.FeatureClaimThreshold)
	l.v.SetDefault("pipeline.mask.hair_claim_threshold", defaults.Pipeline.Mask.HairClaimThreshold)
	l.v.SetDefault("pipeline.mask.smooth_stride", defaults.Pipeline.Mask.SmoothStride)

	l.v.SetDefault("pipeline.feather.default_width", defaults.Pipeline.Feather.DefaultWidth)

	l.v.SetDefault("pipeline.remap.skin_brightness", defaults.Pipeline.Remap.SkinBrightness)
	l.v.SetDefault("pipeline.remap.eye_brightness", defaults.Pipeline.Remap.EyeBrightness)
	l.v.SetDefault("pipeline.remap.sunscreen_brightness", defaults.Pipeline.Remap.SunscreenBrightness)
	l.v.SetDefault("pipeline.remap.sunscreen_saturation", defaults.Pipeline.Remap.SunscreenSaturation)

	l.v.SetDefault("pipeline.compositor.background_darken", defaults.Pipeline.Compositor.BackgroundDarken)
	l.v.SetDefault("pipeline.compositor.background_desaturate", defaults.Pipeline.Compositor.BackgroundDesaturate)
	l.v.SetDefault("pipeline.compositor.soften_blend", defaults.Pipeline.Compositor.SoftenBlend)
	l.v.SetDefault("pipeline.compositor.vignette_strength", defaults.Pipeline.Compositor.VignetteStrength)

	// Detector defaults
	l.v.SetDefault("detector.model_path", defaults.Detector.ModelPath)
	l.v.SetDefault("detector.max_faces", defaults.Detector.MaxFaces)
	l.v.SetDefault("detector.refine_landmarks", defaults.Detector.RefineLandmarks)
	l.v.SetDefault("detector.min_detection_confidence", defaults.Detector.MinDetectionConfidence)
	l.v.SetDefault("detector.min_tracking_confidence", defaults.Detector.MinTrackingConfidence)
	l.v.SetDefault("detector.num_threads", defaults.Detector.NumThreads)

	// Output defaults
	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.dir", defaults.Output.Dir)

	// Metrics defaults
	l.v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	l.v.SetDefault("metrics.addr", defaults.Metrics.Addr)
}

// GetResolvedConfig returns the current resolved configuration for debugging.
func (l *Loader) GetResolvedConfig() map[string]interface{} {
	return l.v.AllSettings()
}

// WriteConfigToFile writes the current configuration to a file.
func (l *Loader) WriteConfigToFile(filename string) error {
	return l.v.WriteConfigAs(filename)
}

// GenerateDefaultConfigFile generates a default configuration file.
func GenerateDefaultConfigFile(filename string) error {
	loader := NewLoader()
	loader.setDefaults()

	if filename == "" {
		filename = "uvcam.yaml"
	}
	return loader.WriteConfigToFile(filename)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
		paths = append(paths, filepath.Join(home, ".config", "uvcam"))
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "uvcam"))
	}

	paths = append(paths, "/etc/uvcam")

	return paths
}
