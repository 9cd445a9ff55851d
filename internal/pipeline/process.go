package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/parsaforughi/pixxel-uv-effect/internal/common"
	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/mask"
	"github.com/parsaforughi/pixxel-uv-effect/internal/remap"
)

// ProcessFrame runs detection and rendering synchronously for one
// frame. The live loop decouples the two; this path serves still-image
// processing and tests.
func (p *Pipeline) ProcessFrame(ctx context.Context, buf *frame.Buffer) (*frame.Buffer, error) {
	if buf == nil || buf.Width == 0 || buf.Height == 0 {
		return nil, errors.New("pipeline: empty frame")
	}
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, errors.New("pipeline: closed")
	}

	start := time.Now()
	set, err := p.provider.Detect(ctx, buf)
	p.applyDetection(detection{set: set, err: err, duration: time.Since(start)})
	return p.render(buf), nil
}

// applyDetection feeds one detector result into the tracking state and
// the landmark history. Runs on the render goroutine.
func (p *Pipeline) applyDetection(d detection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	detectionDuration.Observe(d.duration.Seconds())

	switch {
	case d.err != nil:
		slog.Warn("landmark detection failed", "error", d.err)
		detectionsTotal.WithLabelValues("error").Inc()
		p.tracker.Fail()
	case d.set == nil:
		detectionsTotal.WithLabelValues("no_face").Inc()
		// hold the last stabilized pose through detection gaps; only a
		// session with no pose at all drops out of tracking
		held := p.landmarks.Stabilize(nil)
		p.tracker.NoFace(held != nil)
		if held == nil {
			p.temporal.Reset()
		}
	default:
		detectionsTotal.WithLabelValues("face").Inc()
		p.landmarks.Stabilize(d.set)
		p.tracker.Success()
	}
}

// render produces the output frame for the current tracking state. The
// input buffer is never modified.
func (p *Pipeline) render(buf *frame.Buffer) *frame.Buffer {
	start := time.Now()
	p.mu.Lock()
	state := p.tracker.State()
	lm := p.landmarks.Last()
	p.mu.Unlock()

	var out *frame.Buffer
	if state == StateTracking && lm != nil {
		out = p.renderTracked(buf)
	} else {
		out = p.renderFallback(buf)
	}

	framesRenderedTotal.WithLabelValues(state.String()).Inc()
	frameRenderDuration.WithLabelValues(state.String()).Observe(time.Since(start).Seconds())
	return out
}

// renderTracked runs the full region pipeline from the held landmark
// pose.
func (p *Pipeline) renderTracked(buf *frame.Buffer) *frame.Buffer {
	lm := p.landmarks.Last()
	timings := common.NewStageTimings()

	var masks *mask.Masks
	timings.Time("masks", func() {
		masks = p.masks.BuildMasks(lm, buf.Width, buf.Height)
	})
	defer masks.Release()

	var feathered *mask.Mask
	timings.Time("feather", func() {
		feathered = p.feather.Apply(masks.Skin, lm)
	})
	defer feathered.Release()

	// coverage is the composite weight: feathered skin plus the feature
	// falloffs, so eyes, lips and eyebrows stay visible even though the
	// strict skin mask excludes them.
	coverage := combineCoverage(feathered, masks.Eyes, masks.Lips, masks.Eyebrows)
	defer coverage.Release()

	var stabilized *frame.Buffer
	timings.Time("remap", func() {
		skin := p.renderRegions(buf, masks)
		stabilized = p.temporal.Stabilize(skin, coverage)
	})

	var out *frame.Buffer
	timings.Time("composite", func() {
		background := p.compositor.ProcessBackground(buf)
		out = p.compositor.Composite(buf, background, stabilized, coverage, masks.Background)
		out = p.compositor.Soften(out, masks.Eyes, masks.Lips)
		p.compositor.Vignette(out)
	})

	slog.Debug("frame rendered",
		"masks", timings.Get("masks"),
		"feather", timings.Get("feather"),
		"remap", timings.Get("remap"),
		"composite", timings.Get("composite"),
		"total", timings.Total())
	return out
}

// renderRegions builds the region-processed color buffer: every pixel
// claimed by a region is inverted and pushed through that region's
// lookup. Feature claims outrank skin; eyes outrank lips outrank
// eyebrows so overlapping falloffs resolve to exactly one treatment.
func (p *Pipeline) renderRegions(buf *frame.Buffer, masks *mask.Masks) *frame.Buffer {
	out := buf.Clone()
	threshold := float32(p.cfg.Mask.FeatureClaimThreshold)

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			var region remap.Region
			switch {
			case masks.Eyes.At(x, y) > threshold:
				region = remap.RegionEye
			case masks.Lips.At(x, y) > threshold:
				region = remap.RegionLip
			case masks.Eyebrows.At(x, y) > threshold:
				region = remap.RegionHair
			case masks.Skin.At(x, y) > 0:
				region = remap.RegionSkin
			default:
				continue
			}
			i := buf.Offset(x, y)
			r := remap.Invert(buf.Pix[i])
			g := remap.Invert(buf.Pix[i+1])
			b := remap.Invert(buf.Pix[i+2])
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = p.remapper.Apply(r, g, b, region)
		}
	}
	return out
}

// renderFallback applies the whole-frame inversion treatment used when
// no face is tracked.
func (p *Pipeline) renderFallback(buf *frame.Buffer) *frame.Buffer {
	out := buf.Clone()
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] =
			p.remapper.Fallback(out.Pix[i], out.Pix[i+1], out.Pix[i+2])
	}
	p.compositor.Vignette(out)
	return out
}

// combineCoverage returns the pixelwise max of the given masks.
func combineCoverage(base *mask.Mask, others ...*mask.Mask) *mask.Mask {
	out := base.Clone()
	for _, m := range others {
		for i, v := range m.Data {
			if v > out.Data[i] {
				out.Data[i] = v
			}
		}
	}
	return out
}
