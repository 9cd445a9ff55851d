package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFloat32_LengthAndZeroed(t *testing.T) {
	buf := GetFloat32(1000)
	assert.Len(t, buf, 1000)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buffer not zeroed at %d: %f", i, v)
		}
	}
	PutFloat32(buf)
}

func TestGetFloat32_ReuseIsZeroed(t *testing.T) {
	buf := GetFloat32(512)
	for i := range buf {
		buf[i] = 1.0
	}
	PutFloat32(buf)

	again := GetFloat32(512)
	for i, v := range again {
		if v != 0 {
			t.Fatalf("reused buffer not zeroed at %d: %f", i, v)
		}
	}
	PutFloat32(again)
}

func TestGetBool_ClearedOnReuse(t *testing.T) {
	buf := GetBool(300)
	assert.Len(t, buf, 300)
	buf[7] = true
	PutBool(buf)

	again := GetBool(300)
	assert.False(t, again[7])
	PutBool(again)
}

func TestPut_NilSafe(t *testing.T) {
	PutFloat32(nil)
	PutBool(nil)
}

func TestSizeClass(t *testing.T) {
	assert.Equal(t, 4096, sizeClass(1))
	assert.Equal(t, 4096, sizeClass(4096))
	assert.Equal(t, 8192, sizeClass(4097))
	assert.Equal(t, 4096*3, sizeClass(4096*2+1))
}
