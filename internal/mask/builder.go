package mask

import (
	"math"

	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
	"github.com/parsaforughi/pixxel-uv-effect/internal/utils"
)

// Config holds region mask construction parameters. Falloff radii are in
// pixels at the output resolution.
type Config struct {
	EyeFalloff  float64
	LipFalloff  float64
	BrowFalloff float64
	HairFalloff float64

	// Claim thresholds gating the strict skin mask: a pixel claimed by a
	// feature mask above its threshold is excluded from skin.
	FeatureClaimThreshold float64
	HairClaimThreshold    float64

	// Body extrapolation below the face bounding box for the coarse
	// person split.
	BodyWidthPad     float64
	BodyHeightFactor float64

	// SmoothStride subsamples the smooth falloff masks; values are
	// replicated to skipped pixels. The strict skin mask is always full
	// resolution.
	SmoothStride int

	Regions landmark.Definitions
}

// DefaultConfig returns the reference mask parameters.
func DefaultConfig() Config {
	return Config{
		EyeFalloff:            25,
		LipFalloff:            20,
		BrowFalloff:           15,
		HairFalloff:           35,
		FeatureClaimThreshold: 0.1,
		HairClaimThreshold:    0.3,
		BodyWidthPad:          0.3,
		BodyHeightFactor:      2.5,
		SmoothStride:          2,
		Regions:               landmark.DefaultDefinitions(),
	}
}

// Masks bundles the per-region fields for one frame. Release returns all
// planes to the buffer pool.
type Masks struct {
	Skin       *Mask // strict binary skin region
	Eyes       *Mask
	Lips       *Mask
	Eyebrows   *Mask
	Hair       *Mask // exclusion signal only, not an output region
	Person     *Mask
	Background *Mask
}

// Release frees all mask planes.
func (m *Masks) Release() {
	for _, plane := range []*Mask{m.Skin, m.Eyes, m.Lips, m.Eyebrows, m.Hair, m.Person, m.Background} {
		if plane != nil {
			plane.Release()
		}
	}
}

// Builder derives dense region masks from stabilized landmarks. Builders
// are stateless across frames and safe to reuse.
type Builder struct {
	cfg Config
}

// NewBuilder creates a mask builder. A nil region table falls back to the
// canonical definitions.
func NewBuilder(cfg Config) *Builder {
	if cfg.Regions == nil {
		cfg.Regions = landmark.DefaultDefinitions()
	}
	if cfg.SmoothStride < 1 {
		cfg.SmoothStride = 1
	}
	return &Builder{cfg: cfg}
}

// BuildMasks derives all region masks for a width x height frame.
// Degenerate input (nil or empty landmark set, regions with no usable
// indices) yields all-zero masks, never an error.
func (b *Builder) BuildMasks(landmarks landmark.Set, width, height int) *Masks {
	out := &Masks{
		Skin:       New(width, height),
		Eyes:       New(width, height),
		Lips:       New(width, height),
		Eyebrows:   New(width, height),
		Hair:       New(width, height),
		Person:     New(width, height),
		Background: New(width, height),
	}
	if len(landmarks) == 0 || width <= 0 || height <= 0 {
		return out
	}

	eyeLeft := landmarks.Project(b.cfg.Regions[landmark.RegionEyeLeft], width, height)
	eyeRight := landmarks.Project(b.cfg.Regions[landmark.RegionEyeRight], width, height)
	lips := landmarks.Project(b.cfg.Regions[landmark.RegionLips], width, height)
	browLeft := landmarks.Project(b.cfg.Regions[landmark.RegionEyebrowLeft], width, height)
	browRight := landmarks.Project(b.cfg.Regions[landmark.RegionEyebrowRight], width, height)
	hairline := landmarks.Project(b.cfg.Regions[landmark.RegionHairline], width, height)
	// Region overlays may list the oval indices in arbitrary order; hull
	// them so the fill polygons are always well-formed.
	faceOval := utils.ConvexHull(landmarks.Project(b.cfg.Regions[landmark.RegionFaceOval], width, height))

	b.fillFalloff(out.Eyes, eyeLeft, b.cfg.EyeFalloff)
	b.fillFalloff(out.Eyes, eyeRight, b.cfg.EyeFalloff)
	b.fillFalloff(out.Lips, lips, b.cfg.LipFalloff)
	b.fillFalloff(out.Eyebrows, browLeft, b.cfg.BrowFalloff)
	b.fillFalloff(out.Eyebrows, browRight, b.cfg.BrowFalloff)
	b.fillFalloff(out.Hair, hairline, b.cfg.HairFalloff)

	b.fillStrictSkin(out, faceOval)
	b.fillPerson(out.Person, faceOval, landmarks, width, height)
	b.fillBackground(out.Background, out.Person)
	return out
}

// fillFalloff writes max(existing, 1 - dist/falloff) for pixels near the
// polygon, honoring SmoothStride with replication. Work is confined to
// the polygon's bounding box expanded by the falloff radius.
func (b *Builder) fillFalloff(m *Mask, poly []utils.Point, falloff float64) {
	if len(poly) < 3 || falloff <= 0 {
		return
	}
	box := utils.BoundingBox(poly)
	x0 := utils.ClampInt(int(math.Floor(box.MinX-falloff)), 0, m.Width-1)
	x1 := utils.ClampInt(int(math.Ceil(box.MaxX+falloff)), 0, m.Width-1)
	y0 := utils.ClampInt(int(math.Floor(box.MinY-falloff)), 0, m.Height-1)
	y1 := utils.ClampInt(int(math.Ceil(box.MaxY+falloff)), 0, m.Height-1)

	stride := b.cfg.SmoothStride
	for y := y0; y <= y1; y += stride {
		for x := x0; x <= x1; x += stride {
			d := utils.PolygonDistance(float64(x), float64(y), poly)
			v := float32(1 - d/falloff)
			if v <= 0 {
				continue
			}
			for dy := 0; dy < stride && y+dy <= y1; dy++ {
				for dx := 0; dx < stride && x+dx <= x1; dx++ {
					if v > m.At(x+dx, y+dy) {
						m.Set(x+dx, y+dy, v)
					}
				}
			}
		}
	}
}

// fillStrictSkin computes the binary skin region at full resolution: a
// pixel is skin iff it lies inside the face oval and is not claimed by
// eyes, lips, eyebrows, or the hair exclusion band.
func (b *Builder) fillStrictSkin(out *Masks, faceOval []utils.Point) {
	if len(faceOval) < 3 {
		return
	}
	m := out.Skin
	box := utils.BoundingBox(faceOval)
	x0 := utils.ClampInt(int(math.Floor(box.MinX)), 0, m.Width-1)
	x1 := utils.ClampInt(int(math.Ceil(box.MaxX)), 0, m.Width-1)
	y0 := utils.ClampInt(int(math.Floor(box.MinY)), 0, m.Height-1)
	y1 := utils.ClampInt(int(math.Ceil(box.MaxY)), 0, m.Height-1)

	feature := float32(b.cfg.FeatureClaimThreshold)
	hair := float32(b.cfg.HairClaimThreshold)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !utils.PointInPolygon(float64(x), float64(y), faceOval) {
				continue
			}
			if out.Eyes.At(x, y) > feature || out.Lips.At(x, y) > feature ||
				out.Eyebrows.At(x, y) > feature || out.Hair.At(x, y) > hair {
				continue
			}
			m.Set(x, y, 1)
		}
	}
}

// fillPerson marks the face oval plus a rectangular body region
// extrapolated below the face bounding box. The body split is an
// intentionally coarse heuristic, not a segmentation.
func (b *Builder) fillPerson(m *Mask, faceOval []utils.Point, landmarks landmark.Set, width, height int) {
	if len(faceOval) < 3 {
		return
	}
	faceBox := utils.BoundingBox(faceOval)
	pad := faceBox.Width() * b.cfg.BodyWidthPad
	body := utils.NewBox(
		faceBox.MinX-pad,
		faceBox.MaxY,
		faceBox.MaxX+pad,
		faceBox.MaxY+faceBox.Height()*b.cfg.BodyHeightFactor,
	)

	x0 := utils.ClampInt(int(math.Floor(math.Min(faceBox.MinX, body.MinX))), 0, width-1)
	x1 := utils.ClampInt(int(math.Ceil(math.Max(faceBox.MaxX, body.MaxX))), 0, width-1)
	y0 := utils.ClampInt(int(math.Floor(faceBox.MinY)), 0, height-1)
	y1 := utils.ClampInt(int(math.Ceil(body.MaxY)), 0, height-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			fx, fy := float64(x), float64(y)
			if body.Contains(fx, fy) || utils.PointInPolygon(fx, fy, faceOval) {
				m.Set(x, y, 1)
			}
		}
	}
}

// fillBackground writes the thresholded complement of the person mask.
func (b *Builder) fillBackground(bg, person *Mask) {
	for i, v := range person.Data {
		if v < 0.5 {
			bg.Data[i] = 1
		}
	}
}
