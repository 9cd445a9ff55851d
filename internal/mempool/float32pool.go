// Package mempool provides sized pools for the per-frame []float32 mask
// planes and []bool scratch buffers, keeping the per-tick allocation rate
// flat at interactive frame rates.
package mempool

import "sync"

var (
	float32Pools sync.Map // key: size class (int), value: *sync.Pool
	boolPools    sync.Map // key: size class (int), value: *sync.Pool
)

// sizeClass rounds n up to a multiple of 4096 so that buffers for common
// frame dimensions share pools.
func sizeClass(n int) int {
	const step = 4096
	if n <= step {
		return step
	}
	return ((n + step - 1) / step) * step
}

func poolFor(m *sync.Map, cls int, newFn func() any) *sync.Pool {
	pAny, _ := m.LoadOrStore(cls, &sync.Pool{New: newFn})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return &sync.Pool{New: newFn}
	}
	return p
}

// GetFloat32 retrieves a zeroed []float32 of length n. Mask planes start
// at zero membership, so pooled buffers are cleared before reuse. Return
// via PutFloat32.
func GetFloat32(n int) []float32 {
	cls := sizeClass(n)
	p := poolFor(&float32Pools, cls, func() any { return make([]float32, cls) })
	buf, ok := p.Get().([]float32)
	if !ok || cap(buf) < cls {
		buf = make([]float32, cls)
	}
	buf = buf[:cap(buf)][:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// PutFloat32 returns a buffer to its pool. Safe on nil.
func PutFloat32(buf []float32) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	p := poolFor(&float32Pools, cls, func() any { return make([]float32, cls) })
	p.Put(buf[:cap(buf)]) //nolint:staticcheck
}

// GetBool retrieves a cleared []bool of length n. Return via PutBool.
func GetBool(n int) []bool {
	cls := sizeClass(n)
	p := poolFor(&boolPools, cls, func() any { return make([]bool, cls) })
	buf, ok := p.Get().([]bool)
	if !ok || cap(buf) < cls {
		buf = make([]bool, cls)
	}
	buf = buf[:cap(buf)][:n]
	for i := range buf {
		buf[i] = false
	}
	return buf
}

// PutBool returns a buffer to its pool. Safe on nil.
func PutBool(buf []bool) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	p := poolFor(&boolPools, cls, func() any { return make([]bool, cls) })
	p.Put(buf[:cap(buf)]) //nolint:staticcheck
}
