package mask

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/parsaforughi/pixxel-uv-effect/internal/landmark"
)

// genLandmarkSet generates a mesh-sized landmark set with uniformly
// random normalized coordinates. Deliberately unstructured: the builder
// must stay within range for any geometry the detector could emit.
func genLandmarkSet() gopter.Gen {
	return gen.SliceOfN(landmark.MeshSize, gen.Float64Range(0, 1)).Map(func(xs []float64) landmark.Set {
		set := make(landmark.Set, landmark.MeshSize)
		for i, x := range xs {
			// derive y deterministically so the generator stays cheap
			y := x * 0.7
			set[i] = landmark.Point{X: x, Y: y}
		}
		return set
	})
}

func TestBuildMasks_RangeInvariantProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	builder := NewBuilder(DefaultConfig())

	properties.Property("all mask values stay in [0,1] for arbitrary landmarks", prop.ForAll(
		func(set landmark.Set) bool {
			masks := builder.BuildMasks(set, 64, 64)
			defer masks.Release()
			for _, m := range []*Mask{
				masks.Skin, masks.Eyes, masks.Lips, masks.Eyebrows,
				masks.Hair, masks.Person, masks.Background,
			} {
				for _, v := range m.Data {
					if v < 0 || v > 1 {
						return false
					}
				}
			}
			return true
		},
		genLandmarkSet(),
	))

	properties.Property("skin mask stays binary for arbitrary landmarks", prop.ForAll(
		func(set landmark.Set) bool {
			masks := builder.BuildMasks(set, 64, 64)
			defer masks.Release()
			for _, v := range masks.Skin.Data {
				if v != 0 && v != 1 {
					return false
				}
			}
			return true
		},
		genLandmarkSet(),
	))

	properties.TestingRun(t)
}

func TestFeather_RangeInvariantProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	feather := NewFeather(DefaultFeatherConfig())

	properties.Property("feathered values stay in [0,1] and interior is preserved", prop.ForAll(
		func(x0, y0, size int) bool {
			m := New(48, 48)
			defer m.Release()
			for y := y0; y < y0+size && y < 48; y++ {
				for x := x0; x < x0+size && x < 48; x++ {
					m.Set(x, y, 1)
				}
			}
			out := feather.Apply(m, nil)
			defer out.Release()
			for i, v := range out.Data {
				if v < 0 || v > 1 {
					return false
				}
				// feathering never lowers membership
				if v < m.Data[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
