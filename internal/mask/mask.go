// Package mask converts sparse facial landmarks into dense per-pixel
// region membership fields and feathers their edges for compositing.
package mask

import (
	"github.com/parsaforughi/pixxel-uv-effect/internal/mempool"
)

// Mask is a dense scalar field with one value per pixel in [0,1].
// 0 excludes the pixel from the region, 1 includes it fully, and
// intermediate values are blend weights at feathered edges.
type Mask struct {
	Width  int
	Height int
	Data   []float32
}

// New allocates a zeroed mask backed by the shared buffer pool. Call
// Release when the frame is done with it.
func New(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{Width: width, Height: height, Data: mempool.GetFloat32(width * height)}
}

// Release returns the backing buffer to the pool. The mask must not be
// used afterwards.
func (m *Mask) Release() {
	mempool.PutFloat32(m.Data)
	m.Data = nil
}

// At returns the value at (x, y); out-of-bounds reads return 0.
func (m *Mask) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Data[y*m.Width+x]
}

// Set stores v at (x, y) clamped to [0,1]. Out-of-bounds writes are
// dropped.
func (m *Mask) Set(x, y int, v float32) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.Data[y*m.Width+x] = v
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	c := New(m.Width, m.Height)
	copy(c.Data, m.Data)
	return c
}

// MaxValue returns the largest membership value in the mask.
func (m *Mask) MaxValue() float32 {
	var maxV float32
	for _, v := range m.Data {
		if v > maxV {
			maxV = v
		}
	}
	return maxV
}
