package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare() []Point {
	return []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
}

func TestPointInPolygon(t *testing.T) {
	sq := unitSquare()
	tests := []struct {
		name   string
		x, y   float64
		inside bool
	}{
		{"center", 5, 5, true},
		{"outside right", 15, 5, false},
		{"outside above", 5, -1, false},
		{"near corner inside", 0.5, 0.5, true},
		{"far away", 100, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inside, PointInPolygon(tt.x, tt.y, sq))
		})
	}
}

func TestPointInPolygon_Degenerate(t *testing.T) {
	assert.False(t, PointInPolygon(0, 0, nil))
	assert.False(t, PointInPolygon(0, 0, []Point{{0, 0}}))
	assert.False(t, PointInPolygon(0, 0, []Point{{0, 0}, {1, 1}}))
}

func TestPolygonDistance_InsideIsZero(t *testing.T) {
	assert.Zero(t, PolygonDistance(5, 5, unitSquare()))
}

func TestPolygonDistance_Outside(t *testing.T) {
	// 5 units to the right of the square's right edge
	d := PolygonDistance(15, 5, unitSquare())
	assert.InDelta(t, 5.0, d, 1e-9)

	// diagonal from the corner
	d = PolygonDistance(13, 14, unitSquare())
	assert.InDelta(t, 5.0, d, 1e-9)
}

func TestPolygonDistance_Degenerate(t *testing.T) {
	assert.True(t, math.IsInf(PolygonDistance(0, 0, nil), 1))
	assert.InDelta(t, 5.0, PolygonDistance(3, 4, []Point{{0, 0}}), 1e-9)
}

func TestPolylineDistance(t *testing.T) {
	line := []Point{{0, 0}, {10, 0}}
	assert.InDelta(t, 3.0, PolylineDistance(5, 3, line), 1e-9)
	// beyond the endpoint, distance is to the endpoint itself
	assert.InDelta(t, 5.0, PolylineDistance(13, 4, line), 1e-9)
}

func TestSegmentDistance_DegenerateSegment(t *testing.T) {
	d := SegmentDistance(Point{3, 4}, Point{0, 0}, Point{0, 0})
	assert.InDelta(t, 5.0, d, 1e-9)
}

func TestCentroid(t *testing.T) {
	c := Centroid(unitSquare())
	assert.InDelta(t, 5.0, c.X, 1e-9)
	assert.InDelta(t, 5.0, c.Y, 1e-9)
	assert.Equal(t, Point{}, Centroid(nil))
}

func TestConvexHull_Square(t *testing.T) {
	pts := append(unitSquare(), Point{5, 5}) // interior point must be dropped
	hull := ConvexHull(pts)
	require.Len(t, hull, 4)
	for _, corner := range unitSquare() {
		assert.Contains(t, hull, corner)
	}
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox([]Point{{3, 7}, {-2, 4}, {9, -1}})
	assert.Equal(t, Box{MinX: -2, MinY: -1, MaxX: 9, MaxY: 7}, box)
	assert.Equal(t, Box{}, BoundingBox(nil))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.25, Clamp01(0.25))
}
