package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
	"github.com/parsaforughi/pixxel-uv-effect/internal/provider"
	"github.com/parsaforughi/pixxel-uv-effect/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30, cfg.TargetFPS)
	assert.Equal(t, 15, cfg.DetectionFPS)
	assert.Equal(t, DefaultFailureThreshold, cfg.FailureThreshold)
	assert.InDelta(t, landmark.DefaultSmoothing, cfg.LandmarkSmoothing, 1e-9)
}

func TestBuild_RequiresProviderOrModelPath(t *testing.T) {
	_, err := NewBuilder().Build()
	require.Error(t, err)
}

func TestBuild_WithProvider(t *testing.T) {
	p, err := NewBuilder().WithProvider(provider.NewStatic(nil)).Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()
	assert.Equal(t, StateNoTrack, p.State())
}

func TestBuilder_IgnoresNonPositiveRates(t *testing.T) {
	b := NewBuilder().WithTargetFPS(0).WithDetectionFPS(-1).WithFailureThreshold(0)
	assert.Equal(t, 30, b.cfg.TargetFPS)
	assert.Equal(t, 15, b.cfg.DetectionFPS)
	assert.Equal(t, DefaultFailureThreshold, b.cfg.FailureThreshold)
}

func TestBuilder_Overrides(t *testing.T) {
	b := NewBuilder().
		WithTargetFPS(60).
		WithDetectionFPS(10).
		WithFailureThreshold(5).
		WithLandmarkSmoothing(0.5).
		WithTemporalSmoothing(0.6)
	assert.Equal(t, 60, b.cfg.TargetFPS)
	assert.Equal(t, 10, b.cfg.DetectionFPS)
	assert.Equal(t, 5, b.cfg.FailureThreshold)
	assert.InDelta(t, 0.5, b.cfg.LandmarkSmoothing, 1e-9)
	assert.InDelta(t, 0.6, b.cfg.TemporalSmoothing, 1e-9)
}

func TestBuilder_WithRegionDefinitions_MissingFile(t *testing.T) {
	_, err := NewBuilder().WithRegionDefinitions("/nonexistent/regions.yaml")
	require.Error(t, err)
}

func TestBuilder_WithRegionDefinitions_EmptyPathIsNoop(t *testing.T) {
	b, err := NewBuilder().WithRegionDefinitions("")
	require.NoError(t, err)
	require.NotNil(t, b)
}

func TestClose_Idempotent(t *testing.T) {
	p, err := NewBuilder().WithProvider(provider.NewStatic(nil)).Build()
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}

func TestProcessFrame_AfterCloseFails(t *testing.T) {
	p, err := NewBuilder().WithProvider(provider.NewStatic(nil)).Build()
	require.NoError(t, err)
	require.NoError(t, p.Close())

	buf := testutil.SolidFrame(8, 8, 100, 100, 100)
	_, err = p.ProcessFrame(context.Background(), buf)
	require.Error(t, err)
}

func TestProcessFrame_EmptyFrameFails(t *testing.T) {
	p, err := NewBuilder().WithProvider(provider.NewStatic(nil)).Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()

	_, err = p.ProcessFrame(context.Background(), nil)
	require.Error(t, err)
	_, err = p.ProcessFrame(context.Background(), &frame.Buffer{})
	require.Error(t, err)
}

func TestReset_ClearsDegradedAndHistories(t *testing.T) {
	failing := provider.Func(func(context.Context, *frame.Buffer) (landmark.Set, error) {
		return nil, errors.New("camera detached")
	})
	p, err := NewBuilder().WithProvider(failing).WithFailureThreshold(2).Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()

	buf := testutil.SolidFrame(8, 8, 100, 100, 100)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := p.ProcessFrame(ctx, buf)
		require.NoError(t, err, "render continues through detector failures")
	}
	require.Equal(t, StateDegraded, p.State())

	p.Reset()
	assert.Equal(t, StateNoTrack, p.State())
}
