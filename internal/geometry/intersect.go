package geometry

// segmentsCross reports whether the closed segments (p1,p2) and (q1,q2) meet
// at a single point. Both parameters are tested inclusively so a crossing at
// an endpoint or a rectangle corner counts. Parallel and collinear segments
// never cross.
func segmentsCross(p1, p2, q1, q2 Point) bool {
	d1 := p2.Sub(p1)
	d2 := q2.Sub(q1)
	denom := cross(d1, d2)
	if denom == 0 {
		return false
	}
	w := q1.Sub(p1)
	t := cross(w, d2) / denom
	u := cross(w, d1) / denom
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// SegmentIntersectsRect reports whether the segment p1-p2 touches the
// rectangle r.
//
// The segment intersects when it crosses any of the four rectangle edges or
// when either endpoint lies inside r (inclusive). The endpoint test catches
// segments that start or end strictly inside the rectangle without crossing
// its boundary.
func SegmentIntersectsRect(p1, p2 Point, r Rect) bool {
	r = r.Normalize()
	if r.Contains(p1) || r.Contains(p2) {
		return true
	}
	for _, e := range r.edges() {
		if segmentsCross(p1, p2, e[0], e[1]) {
			return true
		}
	}
	return false
}

// PolylineIntersectsRect reports whether any consecutive segment of points
// touches r. Segments are tested in order and the first hit short-circuits.
// A polyline with fewer than two points never intersects.
func PolylineIntersectsRect(points []Point, r Rect) bool {
	if len(points) < 2 {
		return false
	}
	for i := 1; i < len(points); i++ {
		if SegmentIntersectsRect(points[i-1], points[i], r) {
			return true
		}
	}
	return false
}

// PointInPolygon reports whether p lies inside the closed polygon using
// even-odd ray casting. The last vertex connects implicitly to the first.
// Polygons with fewer than three vertices contain nothing.
func PointInPolygon(p Point, polygon []Point) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := polygon[i], polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
