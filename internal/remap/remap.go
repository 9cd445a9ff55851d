// Package remap implements the per-region UV-camera color lookup and the
// temporal smoothing that suppresses frame-to-frame color flicker.
package remap

// Region selects which nonlinear mapping applies to a pixel.
type Region int

const (
	RegionSkin Region = iota
	RegionEye
	RegionLip
	RegionHair
)

// Config holds the remap branch thresholds.
type Config struct {
	// SkinBrightness splits the skin mapping into its light and deep
	// cyan-blue branches.
	SkinBrightness float64
	// EyeBrightness splits bright sclera from dark pupil.
	EyeBrightness float64
	// SunscreenBrightness and SunscreenSaturation gate the fallback
	// "UV-absorbing coverage" rule: bright, washed-out source pixels go
	// to pure black.
	SunscreenBrightness float64
	SunscreenSaturation float64
	// BrightGuard floors fallback-inverted channels for very bright
	// source pixels so highlights never collapse to pure black.
	BrightGuard float64
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		SkinBrightness:      140,
		EyeBrightness:       128,
		SunscreenBrightness: 180,
		SunscreenSaturation: 25,
		BrightGuard:         230,
	}
}

// Remapper maps inverted source colors through region-specific nonlinear
// functions. Apply and Fallback are pure: identical input always yields
// identical output.
type Remapper struct {
	cfg Config
}

// NewRemapper creates a remapper.
func NewRemapper(cfg Config) *Remapper {
	return &Remapper{cfg: cfg}
}

// Invert returns the photographic negative of a channel.
func Invert(c uint8) uint8 { return 255 - c }

// Apply maps an already-inverted pixel through the region's lookup. The
// caller performs the inversion for skin, eye and lip regions before
// calling.
func (m *Remapper) Apply(r, g, b uint8, region Region) (uint8, uint8, uint8) {
	switch region {
	case RegionSkin:
		return m.applySkin(r, g, b)
	case RegionEye:
		return m.applyEye(r, g, b)
	case RegionLip:
		return m.applyLip(r, g, b)
	default:
		return m.applyHair(r, g, b)
	}
}

// applySkin produces a vivid cyan-blue in both brightness branches. The
// mapping keeps blue >= green >> red so the result never washes out to
// gray or drifts to navy/purple.
func (m *Remapper) applySkin(r, g, b uint8) (uint8, uint8, uint8) {
	brightness := mean(r, g, b)
	if brightness > m.cfg.SkinBrightness {
		// light, saturated cyan-blue
		return clamp255(float64(r)*0.25, 50),
			clamp255(float64(g)*0.9+80, 255),
			clamp255(float64(b)*0.9+100, 255)
	}
	// deeper, still-saturated cyan-blue
	return clamp255(float64(r)*0.15, 30),
		clamp255(float64(g)*0.8+70, 255),
		clamp255(float64(b)*0.85+90, 255)
}

// applyEye keeps bright sclera near-white with slight warmth and pushes
// the dark pupil toward black.
func (m *Remapper) applyEye(r, g, b uint8) (uint8, uint8, uint8) {
	brightness := mean(r, g, b)
	if brightness > m.cfg.EyeBrightness {
		return clamp255(brightness+55, 255),
			clamp255(brightness+45, 255),
			clamp255(brightness+30, 255)
	}
	return clamp255(float64(r)*0.15, 255),
		clamp255(float64(g)*0.15, 255),
		clamp255(float64(b)*0.15, 255)
}

// applyLip pushes green and teal up while suppressing red, independent of
// brightness.
func (m *Remapper) applyLip(r, g, b uint8) (uint8, uint8, uint8) {
	return clamp255(float64(r)*0.3, 255),
		clamp255(float64(g)*0.9+60, 255),
		clamp255(float64(b)*0.7+40, 255)
}

// applyHair pushes all channels toward a light near-white value scaled by
// brightness.
func (m *Remapper) applyHair(r, g, b uint8) (uint8, uint8, uint8) {
	brightness := mean(r, g, b)
	v := clamp255(180+brightness*0.3, 255)
	return v, v, v
}

// Fallback is the whole-frame treatment used without face tracking:
// plain inversion with two guards computed on the source pixel. Bright,
// low-saturation pixels model UV-absorbing coverage and go to pure
// black; other very bright pixels keep a channel floor so the inverted
// output never collapses to black.
func (m *Remapper) Fallback(r, g, b uint8) (uint8, uint8, uint8) {
	brightness := mean(r, g, b)
	saturation := saturationOf(r, g, b)
	if brightness > m.cfg.SunscreenBrightness && saturation < m.cfg.SunscreenSaturation {
		return 0, 0, 0
	}
	ir, ig, ib := Invert(r), Invert(g), Invert(b)
	if brightness > m.cfg.BrightGuard {
		const floor = 10
		if ir < floor {
			ir = floor
		}
		if ig < floor {
			ig = floor
		}
		if ib < floor {
			ib = floor
		}
	}
	return ir, ig, ib
}

func mean(r, g, b uint8) float64 {
	return (float64(r) + float64(g) + float64(b)) / 3
}

// saturationOf approximates saturation as the channel spread.
func saturationOf(r, g, b uint8) float64 {
	maxC, minC := r, r
	for _, c := range []uint8{g, b} {
		if c > maxC {
			maxC = c
		}
		if c < minC {
			minC = c
		}
	}
	return float64(maxC - minC)
}

// clamp255 clamps v into [0,255] with an additional upper cap, returning
// a channel value.
func clamp255(v, limit float64) uint8 {
	if limit < 255 && v > limit {
		v = limit
	}
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
