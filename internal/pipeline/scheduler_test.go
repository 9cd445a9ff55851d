package pipeline

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
	"github.com/parsaforughi/pixxel-uv-effect/internal/provider"
	"github.com/parsaforughi/pixxel-uv-effect/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource replays a fixed list of frames, then io.EOF.
type sliceSource struct {
	frames []*frame.Buffer
	next   int
}

func (s *sliceSource) NextFrame(_ context.Context) (*frame.Buffer, error) {
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	buf := s.frames[s.next]
	s.next++
	return buf, nil
}

// endlessSource repeats one frame forever.
type endlessSource struct {
	buf *frame.Buffer
}

func (s *endlessSource) NextFrame(_ context.Context) (*frame.Buffer, error) {
	return s.buf, nil
}

// collectSink stores every written frame.
type collectSink struct {
	mu     sync.Mutex
	frames []*frame.Buffer
}

func (s *collectSink) WriteFrame(_ context.Context, buf *frame.Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, buf)
	return nil
}

func (s *collectSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func TestRun_RequiresSourceAndSink(t *testing.T) {
	pl := newTestPipeline(t, provider.NewStatic(nil))
	err := pl.Run(context.Background(), nil, &collectSink{})
	require.Error(t, err)
	err = pl.Run(context.Background(), &sliceSource{}, nil)
	require.Error(t, err)
}

func TestRun_RendersEveryFrameUntilEOF(t *testing.T) {
	pl, err := NewBuilder().
		WithProvider(provider.NewStatic(nil)).
		WithTargetFPS(500).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, pl.Close()) }()

	frames := make([]*frame.Buffer, 5)
	for i := range frames {
		frames[i] = testutil.SolidFrame(8, 8, 100, 100, 100)
	}
	sink := &collectSink{}

	err = pl.Run(context.Background(), &sliceSource{frames: frames}, sink)
	require.NoError(t, err)
	assert.Equal(t, len(frames), sink.count())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	pl, err := NewBuilder().
		WithProvider(provider.NewStatic(nil)).
		WithTargetFPS(500).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, pl.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	src := &endlessSource{buf: testutil.SolidFrame(8, 8, 50, 50, 50)}
	sink := &collectSink{}

	done := make(chan error, 1)
	go func() { done <- pl.Run(ctx, src, sink) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run did not stop after cancellation")
	}
}

func TestRun_SingleDetectionInFlight(t *testing.T) {
	var active, peak atomic.Int32
	slow := provider.Func(func(ctx context.Context, _ *frame.Buffer) (landmark.Set, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		return nil, nil
	})

	pl, err := NewBuilder().
		WithProvider(slow).
		WithTargetFPS(500).
		WithDetectionFPS(500).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, pl.Close()) }()

	frames := make([]*frame.Buffer, 20)
	for i := range frames {
		frames[i] = testutil.SolidFrame(8, 8, 80, 80, 80)
	}
	sink := &collectSink{}

	err = pl.Run(context.Background(), &sliceSource{frames: frames}, sink)
	require.NoError(t, err)
	assert.Equal(t, len(frames), sink.count(), "rendering never waits for the detector")
	assert.LessOrEqual(t, peak.Load(), int32(1))
}

func TestRun_DetectionRateLimited(t *testing.T) {
	var calls atomic.Int32
	counting := provider.Func(func(context.Context, *frame.Buffer) (landmark.Set, error) {
		calls.Add(1)
		return nil, nil
	})

	pl, err := NewBuilder().
		WithProvider(counting).
		WithTargetFPS(500).
		WithDetectionFPS(20).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, pl.Close()) }()

	frames := make([]*frame.Buffer, 30)
	for i := range frames {
		frames[i] = testutil.SolidFrame(8, 8, 80, 80, 80)
	}
	sink := &collectSink{}

	err = pl.Run(context.Background(), &sliceSource{frames: frames}, sink)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Less(t, int(calls.Load()), len(frames),
		"detector admission is decoupled from the render rate")
}

// gatedProvider blocks Detect until its gate opens and signals when the
// pipeline releases it.
type gatedProvider struct {
	gate     chan struct{}
	released chan struct{}
}

func (p *gatedProvider) Detect(_ context.Context, _ *frame.Buffer) (landmark.Set, error) {
	<-p.gate
	return nil, nil
}

func (p *gatedProvider) Close() error {
	close(p.released)
	return nil
}

func TestClose_DoesNotAwaitInFlightDetection(t *testing.T) {
	prov := &gatedProvider{gate: make(chan struct{}), released: make(chan struct{})}
	pl, err := NewBuilder().WithProvider(prov).Build()
	require.NoError(t, err)

	// admit one frame to the detector, which blocks on the gate
	pl.maybeDetect(context.Background(), testutil.SolidFrame(8, 8, 60, 60, 60), 0)

	done := make(chan error, 1)
	go func() { done <- pl.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("close waited for the in-flight detector call")
	}

	// the late result is discarded and the provider released after it lands
	close(prov.gate)
	select {
	case <-prov.released:
	case <-time.After(time.Second):
		t.Fatal("provider not released after the late result landed")
	}
}

func TestRun_AppliesLandedDetections(t *testing.T) {
	pl, err := NewBuilder().
		WithProvider(provider.NewStatic(testutil.SyntheticFace())).
		WithTargetFPS(500).
		WithDetectionFPS(500).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, pl.Close()) }()

	frames := make([]*frame.Buffer, 10)
	for i := range frames {
		frames[i] = testutil.GradientFrame(48, 48)
	}
	sink := &collectSink{}

	err = pl.Run(context.Background(), &sliceSource{frames: frames}, sink)
	require.NoError(t, err)
	assert.Equal(t, StateTracking, pl.State())
}
