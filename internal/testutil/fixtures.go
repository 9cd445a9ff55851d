// Package testutil provides synthetic landmark sets and frames for
// exercising the mask and compositing stages without a detector.
package testutil

import (
	"math"

	"github.com/parsaforughi/pixxel-uv-effect/internal/frame"
	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
)

// PlaceEllipse distributes the landmarks at the given indices evenly
// around an ellipse in normalized coordinates.
func PlaceEllipse(set landmark.Set, indices []int, cx, cy, rx, ry float64) {
	n := len(indices)
	for i, idx := range indices {
		if idx < 0 || idx >= len(set) {
			continue
		}
		angle := 2 * math.Pi * float64(i) / float64(n)
		set[idx] = landmark.Point{
			X: cx + rx*math.Cos(angle),
			Y: cy + ry*math.Sin(angle),
		}
	}
}

// SyntheticFace builds a full-size landmark set with a plausible frontal
// face: oval centered slightly above frame center, eyes, lips, eyebrows
// and cheeks in proportion. All remaining mesh indices sit at the face
// center so stray indices never fall outside the face.
func SyntheticFace() landmark.Set {
	set := make(landmark.Set, landmark.MeshSize)
	const cx, cy = 0.5, 0.45
	for i := range set {
		set[i] = landmark.Point{X: cx, Y: cy}
	}

	defs := landmark.DefaultDefinitions()
	PlaceEllipse(set, defs[landmark.RegionFaceOval], cx, cy, 0.18, 0.26)
	PlaceEllipse(set, defs[landmark.RegionEyeLeft], cx-0.08, cy-0.05, 0.035, 0.02)
	PlaceEllipse(set, defs[landmark.RegionEyeRight], cx+0.08, cy-0.05, 0.035, 0.02)
	PlaceEllipse(set, defs[landmark.RegionLips], cx, cy+0.13, 0.06, 0.03)
	PlaceEllipse(set, defs[landmark.RegionEyebrowLeft], cx-0.08, cy-0.1, 0.04, 0.012)
	PlaceEllipse(set, defs[landmark.RegionEyebrowRight], cx+0.08, cy-0.1, 0.04, 0.012)
	PlaceEllipse(set, defs[landmark.RegionCheekLeft], cx-0.1, cy+0.04, 0.03, 0.03)
	PlaceEllipse(set, defs[landmark.RegionCheekRight], cx+0.1, cy+0.04, 0.03, 0.03)
	set[landmark.NoseTip] = landmark.Point{X: cx, Y: cy + 0.02}
	return set
}

// GradientFrame builds a frame whose red channel ramps horizontally and
// green channel vertically, with a constant blue midtone. Useful for
// verifying that per-pixel stages read and write the right locations.
func GradientFrame(width, height int) *frame.Buffer {
	buf, err := frame.NewBuffer(width, height)
	if err != nil {
		panic(err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8(x * 255 / max(width-1, 1))
			g := uint8(y * 255 / max(height-1, 1))
			buf.SetRGBA(x, y, r, g, 128, 255)
		}
	}
	return buf
}

// SolidFrame builds a frame filled with one color.
func SolidFrame(width, height int, r, g, b uint8) *frame.Buffer {
	buf, err := frame.NewBuffer(width, height)
	if err != nil {
		panic(err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf.SetRGBA(x, y, r, g, b, 255)
		}
	}
	return buf
}
