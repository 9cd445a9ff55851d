// Package landmark defines the facial landmark contract shared by the
// detector boundary and the mask stages: normalized 3D points, the fixed
// mesh index assignments, named facial regions, and the exponential
// smoothing applied across frames.
package landmark

import "github.com/parsaforughi/pixxel-uv-effect/internal/utils"

// MeshSize is the canonical number of landmarks produced by the face mesh
// detector. Index semantics are a fixed external contract; a set of a
// different length is tolerated but indices past its end are skipped.
const MeshSize = 468

// NoseTip is the mesh index of the nose tip, used as the face anchor.
const NoseTip = 4

// Point is a single tracked facial point. X and Y are normalized to
// [0,1] relative to frame width and height; Z is detector-defined
// relative depth.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Set is a fixed-length ordered landmark sequence indexed by semantic
// role. A nil Set means "no detection".
type Set []Point

// Clone returns a deep copy of the set. Cloning nil yields nil.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// Project converts the landmarks at the given indices into pixel
// coordinates for a width x height frame. Indices outside the set are
// skipped, not an error.
func (s Set) Project(indices []int, width, height int) []utils.Point {
	pts := make([]utils.Point, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(s) {
			continue
		}
		pts = append(pts, utils.Point{
			X: s[idx].X * float64(width),
			Y: s[idx].Y * float64(height),
		})
	}
	return pts
}

// Bounds returns the pixel-space bounding box of the landmarks at the
// given indices.
func (s Set) Bounds(indices []int, width, height int) utils.Box {
	return utils.BoundingBox(s.Project(indices, width, height))
}
