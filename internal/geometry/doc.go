// Package geometry provides the toolkit-free geometric predicates used to decide
// which isolatable section a detected object belongs to.
//
// All coordinates are in page-image pixel space: (0,0) is the top-left corner,
// X increases rightward and Y increases downward. Values are float64 so that
// polylines drawn at fractional zoom levels keep their precision; integer
// detection boxes convert losslessly.
//
// # Predicates
//
// The package exposes three independent tests:
//
//   - SegmentIntersectsRect: a segment touches an axis-aligned rectangle
//   - PolylineIntersectsRect: any segment of an open polyline touches a rectangle
//   - PointInPolygon: even-odd ray casting against a closed polygon
//
// PolylineIntersectsRect is the canonical assignment test. A section boundary is
// an open stroke, not a closed region, so PointInPolygon is only used for
// auxiliary "is this point inside the shape" queries and the two must not be
// substituted for one another.
//
// # Degenerate Input
//
// Malformed geometry is never an error. A polyline with fewer than two points
// never intersects anything and a polygon with fewer than three vertices
// contains nothing.
package geometry
