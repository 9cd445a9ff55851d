// Package compositor merges the original, background-processed, and
// region-processed pixel buffers into the final frame, then applies the
// finishing passes: an edge-preserving soften and a subtle vignette.
package compositor

import (
	"math"

	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/mask"
)

// Config holds compositing and finishing parameters.
type Config struct {
	// Background treatment: darken factor and partial desaturation for
	// ordinary background pixels; shadow suppression clamps dark,
	// washed-out pixels much harder toward black.
	BackgroundDarken      float64
	BackgroundDesaturate  float64
	ShadowLumaThreshold   float64
	ShadowSatThreshold    float64
	ShadowScale           float64

	// Soften pass: blend weight of the blurred image (the rest comes
	// from the unblurred composite) and the mask level above which
	// eye/lip pixels are kept sharp.
	SoftenBlend    float64
	SharpThreshold float64

	// VignetteStrength is the maximum darkening at the frame corners.
	VignetteStrength float64
}

// DefaultConfig returns the reference finishing parameters.
func DefaultConfig() Config {
	return Config{
		BackgroundDarken:     0.15,
		BackgroundDesaturate: 0.3,
		ShadowLumaThreshold:  60,
		ShadowSatThreshold:   40,
		ShadowScale:          0.25,
		SoftenBlend:          0.1,
		SharpThreshold:       0.1,
		VignetteStrength:     0.05,
	}
}

// Compositor performs pure pixel arithmetic; it carries no state across
// frames and tolerates all-zero masks by degrading to a passthrough of
// the original frame.
type Compositor struct {
	cfg Config
}

// NewCompositor creates a compositor.
func NewCompositor(cfg Config) *Compositor {
	if cfg.VignetteStrength > 0.06 {
		// the vignette is cosmetic and must never visibly alter the subject
		cfg.VignetteStrength = 0.06
	}
	return &Compositor{cfg: cfg}
}

// ProcessBackground applies the background treatment to a copy of the
// frame: shadow suppression for dark low-saturation pixels, mild
// darkening plus partial desaturation for the rest.
func (c *Compositor) ProcessBackground(original *frame.Buffer) *frame.Buffer {
	out := original.Clone()
	for i := 0; i < len(out.Pix); i += 4 {
		r := float64(out.Pix[i])
		g := float64(out.Pix[i+1])
		b := float64(out.Pix[i+2])
		luma := 0.299*r + 0.587*g + 0.114*b
		sat := maxChannel(r, g, b) - minChannel(r, g, b)

		if luma < c.cfg.ShadowLumaThreshold && sat < c.cfg.ShadowSatThreshold {
			out.Pix[i] = clampU8(r * c.cfg.ShadowScale)
			out.Pix[i+1] = clampU8(g * c.cfg.ShadowScale)
			out.Pix[i+2] = clampU8(b * c.cfg.ShadowScale)
			continue
		}

		gray := luma
		k := c.cfg.BackgroundDesaturate
		scale := 1 - c.cfg.BackgroundDarken
		out.Pix[i] = clampU8((r + (gray-r)*k) * scale)
		out.Pix[i+1] = clampU8((g + (gray-g)*k) * scale)
		out.Pix[i+2] = clampU8((b + (gray-b)*k) * scale)
	}
	return out
}

// Composite merges the buffers per pixel by mask weight:
//
//	featheredSkin > 0    lerp(backgroundProcessed, skinProcessed, weight)
//	background > 0.5     backgroundProcessed
//	otherwise            original (person but not skin, e.g. clothing)
func (c *Compositor) Composite(original, backgroundProcessed, skinProcessed *frame.Buffer,
	featheredSkin, background *mask.Mask,
) *frame.Buffer {
	out := original.Clone()
	for y := 0; y < original.Height; y++ {
		for x := 0; x < original.Width; x++ {
			i := original.Offset(x, y)
			if w := featheredSkin.At(x, y); w > 0 {
				for ch := 0; ch < 3; ch++ {
					a := float64(backgroundProcessed.Pix[i+ch])
					b := float64(skinProcessed.Pix[i+ch])
					out.Pix[i+ch] = clampU8(a + (b-a)*float64(w))
				}
				continue
			}
			if background.At(x, y) > 0.5 {
				copy(out.Pix[i:i+3], backgroundProcessed.Pix[i:i+3])
			}
			// else: original already in place
		}
	}
	return out
}

// Soften applies a small-radius weighted blur blended lightly over the
// composite. Pixels claimed by the eye or lip masks above the sharp
// threshold are excluded so those features stay crisp.
func (c *Compositor) Soften(buf *frame.Buffer, eyes, lips *mask.Mask) *frame.Buffer {
	out := buf.Clone()
	blend := c.cfg.SoftenBlend
	if blend <= 0 {
		return out
	}
	sharp := float32(c.cfg.SharpThreshold)

	// 3x3 kernel weights: center 4, edges 2, corners 1
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if eyes.At(x, y) > sharp || lips.At(x, y) > sharp {
				continue
			}
			i := buf.Offset(x, y)
			for ch := 0; ch < 3; ch++ {
				var sum, weight float64
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := x+dx, y+dy
						if nx < 0 || ny < 0 || nx >= buf.Width || ny >= buf.Height {
							continue
						}
						w := kernelWeight(dx, dy)
						sum += w * float64(buf.Pix[buf.Offset(nx, ny)+ch])
						weight += w
					}
				}
				blurred := sum / weight
				orig := float64(buf.Pix[i+ch])
				out.Pix[i+ch] = clampU8(orig*(1-blend) + blurred*blend)
			}
		}
	}
	return out
}

// Vignette darkens pixels radially from the frame center by
// (dist/maxDist)^2 * strength, in place.
func (c *Compositor) Vignette(buf *frame.Buffer) {
	k := c.cfg.VignetteStrength
	if k <= 0 {
		return
	}
	cx := float64(buf.Width) / 2
	cy := float64(buf.Height) / 2
	maxDist := math.Hypot(cx, cy)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist
			factor := 1 - d*d*k
			i := buf.Offset(x, y)
			for ch := 0; ch < 3; ch++ {
				buf.Pix[i+ch] = clampU8(float64(buf.Pix[i+ch]) * factor)
			}
		}
	}
}

func kernelWeight(dx, dy int) float64 {
	switch {
	case dx == 0 && dy == 0:
		return 4
	case dx == 0 || dy == 0:
		return 2
	default:
		return 1
	}
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func maxChannel(r, g, b float64) float64 { return math.Max(r, math.Max(g, b)) }
func minChannel(r, g, b float64) float64 { return math.Min(r, math.Min(g, b)) }
