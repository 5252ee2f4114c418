package geometry

import "math"

// Point is a 2-D coordinate in page-image pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// cross returns the z component of the 2-D cross product p × q.
func cross(p, q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Rect is an axis-aligned rectangle. A normalized Rect has X1 <= X2 and
// Y1 <= Y2; all edges are inclusive.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Normalize returns r with its corners ordered so that X1 <= X2 and Y1 <= Y2.
func (r Rect) Normalize() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Contains reports whether p lies inside r or on its boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X1 && p.X <= r.X2 && p.Y >= r.Y1 && p.Y <= r.Y2
}

// Overlaps reports whether r and o share at least one point. Touching edges
// count as overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X1 <= o.X2 && o.X1 <= r.X2 && r.Y1 <= o.Y2 && o.Y1 <= r.Y2
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X1: math.Min(r.X1, o.X1),
		Y1: math.Min(r.Y1, o.Y1),
		X2: math.Max(r.X2, o.X2),
		Y2: math.Max(r.Y2, o.Y2),
	}
}

// edges returns the four boundary segments of r in clockwise order starting
// at the top-left corner.
func (r Rect) edges() [4][2]Point {
	tl := Point{X: r.X1, Y: r.Y1}
	tr := Point{X: r.X2, Y: r.Y1}
	br := Point{X: r.X2, Y: r.Y2}
	bl := Point{X: r.X1, Y: r.Y2}
	return [4][2]Point{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
}

// BoundsOf returns the bounding rectangle of points. The second result is
// false when points is empty.
func BoundsOf(points []Point) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r := Rect{X1: points[0].X, Y1: points[0].Y, X2: points[0].X, Y2: points[0].Y}
	for _, p := range points[1:] {
		if p.X < r.X1 {
			r.X1 = p.X
		}
		if p.X > r.X2 {
			r.X2 = p.X
		}
		if p.Y < r.Y1 {
			r.Y1 = p.Y
		}
		if p.Y > r.Y2 {
			r.Y2 = p.Y
		}
	}
	return r, true
}
