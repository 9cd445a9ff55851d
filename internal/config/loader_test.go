package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parsaforughi/pixxel-uv-effect/internal/pipeline"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader() *Loader {
	// isolated viper instance so tests do not leak into each other
	return &Loader{v: viper.New()}
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.Pipeline.TargetFPS)
	assert.Equal(t, "png", cfg.Output.Format)
}

func TestLoadWithFile_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uvcam.yaml")
	content := `
log_level: debug
pipeline:
  target_fps: 24
  detection_fps: 8
  landmark_smoothing: 0.5
detector:
  model_path: /models/mesh.onnx
output:
  format: jpg
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 24, cfg.Pipeline.TargetFPS)
	assert.Equal(t, 8, cfg.Pipeline.DetectionFPS)
	assert.InDelta(t, 0.5, cfg.Pipeline.LandmarkSmoothing, 1e-9)
	assert.Equal(t, "/models/mesh.onnx", cfg.Detector.ModelPath)
	assert.Equal(t, "jpg", cfg.Output.Format)

	// unset keys keep their defaults
	assert.Equal(t, pipeline.DefaultFailureThreshold, cfg.Pipeline.FailureThreshold)
}

func TestLoadWithFile_MissingFile(t *testing.T) {
	_, err := newTestLoader().LoadWithFile("/nonexistent/uvcam.yaml")
	require.Error(t, err)
}

func TestLoadWithFile_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uvcam.yaml")
	content := "pipeline:\n  target_fps: -5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := newTestLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_fps")
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generated.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Pipeline.TargetFPS)
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	assert.Contains(t, paths, ".")
	assert.Contains(t, paths, "/etc/uvcam")
}
