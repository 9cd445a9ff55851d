package mask

import (
	"math"

	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
	"github.com/parsaforughi/pixxel-uv-effect/internal/mempool"
	"github.com/parsaforughi/pixxel-uv-effect/internal/utils"
)

// FeatherConfig selects feather widths by facial zone. Different contours
// need different widths: fine at the cheeks, wider at the hairline where
// detection is less precise.
type FeatherConfig struct {
	JawZoneRange  float64 // px distance from the jawline curve
	JawWidthMin   float64
	JawWidthMax   float64
	HairZoneRange float64
	HairWidthMin  float64
	HairWidthMax  float64
	CheekZoneRange float64
	CheekWidthMin  float64
	CheekWidthMax  float64
	DefaultWidth   float64

	Regions landmark.Definitions
}

// DefaultFeatherConfig returns the reference zone widths.
func DefaultFeatherConfig() FeatherConfig {
	return FeatherConfig{
		JawZoneRange:   30,
		JawWidthMin:    12,
		JawWidthMax:    16,
		HairZoneRange:  40,
		HairWidthMin:   16,
		HairWidthMax:   20,
		CheekZoneRange: 25,
		CheekWidthMin:  6,
		CheekWidthMax:  8,
		DefaultWidth:   8,
		Regions:        landmark.DefaultDefinitions(),
	}
}

// Feather softens the skin mask boundary with spatially adaptive Gaussian
// falloff. It operates in place on a copy: interior pixels (value 1 with
// a fully-included neighborhood) and exterior pixels beyond every zone's
// feather width pass through unchanged.
type Feather struct {
	cfg FeatherConfig
}

// NewFeather creates a feather engine.
func NewFeather(cfg FeatherConfig) *Feather {
	if cfg.Regions == nil {
		cfg.Regions = landmark.DefaultDefinitions()
	}
	if cfg.DefaultWidth <= 0 {
		cfg.DefaultWidth = 8
	}
	return &Feather{cfg: cfg}
}

// maxWidth returns the widest feather any zone can request, bounding the
// edge band search.
func (f *Feather) maxWidth() float64 {
	w := f.cfg.DefaultWidth
	for _, zw := range []float64{f.cfg.JawWidthMax, f.cfg.HairWidthMax, f.cfg.CheekWidthMax} {
		if zw > w {
			w = zw
		}
	}
	return w
}

// Apply feathers the boundary of a binary mask and returns a new mask.
// Edge distances are measured by breadth-first expansion from the
// included boundary into the excluded side; each band pixel picks its
// feather width from the nearest landmark zone (jawline, hairline,
// cheeks) and blends
//
//	m' = clamp01(m + (1-m) * gauss(d, width) * 0.5)
//
// Degenerate landmark input feathers with the default width everywhere.
func (f *Feather) Apply(m *Mask, landmarks landmark.Set) *Mask {
	out := m.Clone()
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		return out
	}

	jaw := landmarks.Project(f.cfg.Regions[landmark.RegionJawline], w, h)
	hairline := landmarks.Project(f.cfg.Regions[landmark.RegionHairline], w, h)
	// The cheeks are compact patches, not curves; measuring to their
	// centroids avoids treating the two as one polyline bridging the nose.
	var cheeks []utils.Point
	for _, region := range []landmark.Region{landmark.RegionCheekLeft, landmark.RegionCheekRight} {
		if pts := landmarks.Project(f.cfg.Regions[region], w, h); len(pts) > 0 {
			cheeks = append(cheeks, utils.Centroid(pts))
		}
	}

	band, dist := f.edgeBand(m)
	defer mempool.PutBool(band)
	defer mempool.PutFloat32(dist)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !band[i] {
				continue
			}
			v := m.At(x, y)
			if v >= 1 {
				// interior stays fully included
				continue
			}
			width := f.selectWidth(float64(x), float64(y), jaw, hairline, cheeks)
			d := float64(dist[i])
			if d > width {
				continue
			}
			g := gaussian(d, width)
			out.Set(x, y, v+(1-v)*float32(g)*0.5)
		}
	}
	return out
}

// edgeBand finds every pixel within maxWidth of the mask boundary using a
// multi-source breadth-first expansion seeded at included boundary
// pixels. Returns the band membership and per-pixel edge distance.
func (f *Feather) edgeBand(m *Mask) (band []bool, dist []float32) {
	w, h := m.Width, m.Height
	n := w * h
	band = mempool.GetBool(n)
	dist = mempool.GetFloat32(n)
	limit := f.maxWidth()

	type cell struct{ x, y int }
	var frontier []cell
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.At(x, y) < 0.5 {
				continue
			}
			if hasExcludedNeighbor(m, x, y) {
				i := y*w + x
				band[i] = true
				dist[i] = 0
				frontier = append(frontier, cell{x, y})
			}
		}
	}

	// Chamfer-style BFS: integer steps approximate euclidean distance
	// closely enough for a <=20px band.
	step := float32(1)
	for len(frontier) > 0 && float64(step) <= limit {
		var next []cell
		for _, c := range frontier {
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := c.x+dx, c.y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					i := ny*w + nx
					if band[i] || m.At(nx, ny) >= 0.5 {
						continue
					}
					band[i] = true
					dist[i] = step
					next = append(next, cell{nx, ny})
				}
			}
		}
		frontier = next
		step++
	}

	// Pixels already holding fractional values count as edge pixels even
	// when the expansion did not reach them.
	for i, v := range m.Data {
		if v > 0 && v < 1 && !band[i] {
			band[i] = true
			dist[i] = 0
		}
	}
	return band, dist
}

func hasExcludedNeighbor(m *Mask, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
				continue
			}
			if m.At(nx, ny) < 0.5 {
				return true
			}
		}
	}
	return false
}

// selectWidth picks the feather width for a pixel from its nearest zone.
// Within a zone the width scales linearly from the zone maximum at the
// curve down to the minimum at the zone's range limit.
func (f *Feather) selectWidth(x, y float64, jaw, hairline, cheeks []utils.Point) float64 {
	type zone struct {
		dist            float64
		rangePx         float64
		widthMin, widthMax float64
	}
	zones := []zone{
		{utils.PolylineDistance(x, y, jaw), f.cfg.JawZoneRange, f.cfg.JawWidthMin, f.cfg.JawWidthMax},
		{utils.PolylineDistance(x, y, hairline), f.cfg.HairZoneRange, f.cfg.HairWidthMin, f.cfg.HairWidthMax},
		{nearestPointDistance(x, y, cheeks), f.cfg.CheekZoneRange, f.cfg.CheekWidthMin, f.cfg.CheekWidthMax},
	}

	best := -1
	bestNorm := math.Inf(1)
	for i, z := range zones {
		if z.rangePx <= 0 || z.dist >= z.rangePx {
			continue
		}
		norm := z.dist / z.rangePx
		if norm < bestNorm {
			bestNorm = norm
			best = i
		}
	}
	if best < 0 {
		return f.cfg.DefaultWidth
	}
	z := zones[best]
	return z.widthMax - (z.widthMax-z.widthMin)*(z.dist/z.rangePx)
}

func nearestPointDistance(x, y float64, pts []utils.Point) float64 {
	min := math.Inf(1)
	p := utils.Point{X: x, Y: y}
	for _, pt := range pts {
		if d := utils.Distance(p, pt); d < min {
			min = d
		}
	}
	return min
}

// gaussian evaluates a falloff of the given width at distance d, with
// sigma at half the width so the profile is near zero by the band edge.
func gaussian(d, width float64) float64 {
	if width <= 0 {
		return 0
	}
	sigma := width / 2
	return math.Exp(-(d * d) / (2 * sigma * sigma))
}
