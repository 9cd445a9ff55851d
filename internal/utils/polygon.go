package utils

import "math"

// PointInPolygon reports whether (x, y) lies inside the polygon using the
// ray-casting (even-odd) rule. Polygons with fewer than 3 vertices contain
// no points.
func PointInPolygon(x, y float64, poly []Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		pi, pj := poly[i], poly[j]
		if (pi.Y > y) != (pj.Y > y) {
			xCross := (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// SegmentDistance returns the distance from point p to the segment ab.
func SegmentDistance(p, a, b Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	wx, wy := p.X-a.X, p.Y-a.Y
	segLen2 := vx*vx + vy*vy
	if segLen2 == 0 {
		return math.Hypot(wx, wy)
	}
	t := (wx*vx + wy*vy) / segLen2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.X-(a.X+t*vx), p.Y-(a.Y+t*vy))
}

// PolygonDistance returns 0 when (x, y) lies inside the polygon, otherwise
// the minimum distance to any polygon edge. An empty polygon yields +Inf,
// a single point its point distance.
func PolygonDistance(x, y float64, poly []Point) float64 {
	switch len(poly) {
	case 0:
		return math.Inf(1)
	case 1:
		return Distance(Point{X: x, Y: y}, poly[0])
	}
	if PointInPolygon(x, y, poly) {
		return 0
	}
	p := Point{X: x, Y: y}
	minDist := math.Inf(1)
	j := len(poly) - 1
	for i := range poly {
		if d := SegmentDistance(p, poly[j], poly[i]); d < minDist {
			minDist = d
		}
		j = i
	}
	return minDist
}

// PolylineDistance returns the minimum distance from (x, y) to an open
// polyline. Unlike PolygonDistance the curve is not closed and has no
// interior.
func PolylineDistance(x, y float64, pts []Point) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return Distance(Point{X: x, Y: y}, pts[0])
	}
	p := Point{X: x, Y: y}
	minDist := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		if d := SegmentDistance(p, pts[i-1], pts[i]); d < minDist {
			minDist = d
		}
	}
	return minDist
}

// Centroid returns the average of the points. Degenerate input returns the
// zero point.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(pts))
	return Point{X: cx / n, Y: cy / n}
}

// ConvexHull computes the convex hull of a set of points using the
// monotone chain algorithm. Returns the hull in CCW order without
// duplicating the first point at the end.
func ConvexHull(pts []Point) []Point {
	n := len(pts)
	if n <= 1 {
		return append([]Point(nil), pts...)
	}
	p := make([]Point, n)
	copy(p, pts)
	sortPoints(p)
	p = removeDuplicatePoints(p)
	n = len(p)
	if n <= 1 {
		return append([]Point(nil), p...)
	}
	lower := buildLowerHull(p)
	upper := buildUpperHull(p)
	hull := make([]Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

func removeDuplicatePoints(p []Point) []Point {
	q := p[:0]
	var last Point
	hasLast := false
	for _, pt := range p {
		if !hasLast || pt.X != last.X || pt.Y != last.Y {
			q = append(q, pt)
			last = pt
			hasLast = true
		}
	}
	return q
}

func buildLowerHull(p []Point) []Point {
	lower := make([]Point, 0, len(p))
	for _, pt := range p {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], pt) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, pt)
	}
	return lower
}

func buildUpperHull(p []Point) []Point {
	upper := make([]Point, 0, len(p))
	for i := len(p) - 1; i >= 0; i-- {
		pt := p[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], pt) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, pt)
	}
	return upper
}

func sortPoints(p []Point) {
	// simple insertion sort since n is usually small
	for i := 1; i < len(p); i++ {
		v := p[i]
		j := i - 1
		for j >= 0 && (p[j].X > v.X || (p[j].X == v.X && p[j].Y > v.Y)) {
			p[j+1] = p[j]
			j--
		}
		p[j+1] = v
	}
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
