package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
)

// FrameSource supplies input frames. NextFrame returning io.EOF ends
// the run cleanly.
type FrameSource interface {
	NextFrame(ctx context.Context) (*frame.Buffer, error)
}

// FrameSink receives rendered frames.
type FrameSink interface {
	WriteFrame(ctx context.Context, buf *frame.Buffer) error
}

// Run renders frames from src to sink at the configured fixed rate
// until the source is exhausted or the context is canceled.
//
// Each tick renders from the held pose immediately; detection runs on
// its own goroutine, at most one invocation in flight, admitted at the
// detection rate. A result landed by a previous tick is applied before
// rendering, so a slow detector degrades landmark freshness but never
// the frame rate.
func (p *Pipeline) Run(ctx context.Context, src FrameSource, sink FrameSink) error {
	if src == nil || sink == nil {
		return errors.New("pipeline: source and sink are required")
	}

	interval := time.Second / time.Duration(p.cfg.TargetFPS)
	detectEvery := time.Second / time.Duration(p.cfg.DetectionFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("render loop started",
		"interval", interval, "detection_interval", detectEvery)

	frames := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		tickStart := time.Now()
		buf, err := src.NextFrame(ctx)
		if errors.Is(err, io.EOF) {
			slog.Info("frame source exhausted")
			return nil
		}
		if err != nil {
			return fmt.Errorf("pipeline: read frame: %w", err)
		}

		// apply a landed detection before rendering this tick
		select {
		case d := <-p.results:
			p.applyDetection(d)
		default:
		}

		p.maybeDetect(ctx, buf, detectEvery)

		out := p.render(buf)
		if err := sink.WriteFrame(ctx, out); err != nil {
			return fmt.Errorf("pipeline: write frame: %w", err)
		}

		frames++
		if frames%runtimeStatsEvery == 0 {
			logRuntimeStats(frames)
		}
		if time.Since(tickStart) > interval {
			ticksMissedTotal.Inc()
		}
	}
}

// maybeDetect admits the frame to the detector when no invocation is in
// flight and the detection interval has elapsed. The worker snapshots
// the frame so the render loop can keep reusing its buffer.
func (p *Pipeline) maybeDetect(ctx context.Context, buf *frame.Buffer, detectEvery time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.inFlight {
		return
	}
	now := time.Now()
	if !p.lastDetect.IsZero() && now.Sub(p.lastDetect) < detectEvery {
		return
	}
	p.inFlight = true
	p.lastDetect = now

	snapshot := buf.Clone()
	go func() {
		start := time.Now()
		set, err := p.provider.Detect(ctx, snapshot)
		p.results <- detection{set: set, err: err, duration: time.Since(start)}
	}()
}
