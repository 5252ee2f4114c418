package model

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/spectra-mcp/internal/geometry"
)

// Polyline is one continuous boundary stroke drawn on a single page.
// Points are persisted as [[x, y], ...].
type Polyline struct {
	Points []geometry.Point
	Page   int
}

type polylineJSON struct {
	Points [][2]float64 `json:"points"`
	Page   int          `json:"page"`
}

// MarshalJSON encodes the polyline as {"points": [[x,y],...], "page": n}.
func (p Polyline) MarshalJSON() ([]byte, error) {
	v := polylineJSON{Points: make([][2]float64, len(p.Points)), Page: p.Page}
	for i, pt := range p.Points {
		v.Points[i] = [2]float64{pt.X, pt.Y}
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes the persisted form.
func (p *Polyline) UnmarshalJSON(data []byte) error {
	var v polylineJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.Page = v.Page
	p.Points = make([]geometry.Point, len(v.Points))
	for i, pt := range v.Points {
		p.Points[i] = geometry.Point{X: pt[0], Y: pt[1]}
	}
	return nil
}

func (p Polyline) clone() Polyline {
	pts := make([]geometry.Point, len(p.Points))
	copy(pts, p.Points)
	return Polyline{Points: pts, Page: p.Page}
}

// Section is a named isolatable region bounded by one or more polylines.
//
// The bounding box of all polyline points is cached. Every structural change
// to the polylines must go through the mutators below so the cache is dropped;
// editing Polylines directly leaves a stale box and must be followed by
// InvalidateBounds. Name, LineSize and Color changes never touch the cache.
type Section struct {
	Name      string     `json:"name"`
	LineSize  *float64   `json:"line_size"`
	Color     Color      `json:"color"`
	Polylines []Polyline `json:"polylines"`

	bounds      geometry.Rect
	boundsState boundsState
}

type boundsState uint8

const (
	boundsStale boundsState = iota
	boundsEmpty
	boundsReady
)

// NewSection returns an empty section.
func NewSection(name string, lineSize *float64, color Color) *Section {
	return &Section{Name: name, LineSize: lineSize, Color: color}
}

// Bounds returns the bounding box of every point in every polyline,
// regardless of page. The second result is false when the section has no
// points. The box is recomputed lazily after structural changes.
func (s *Section) Bounds() (geometry.Rect, bool) {
	if s.boundsState == boundsStale {
		s.boundsState = boundsEmpty
		for _, pl := range s.Polylines {
			r, ok := geometry.BoundsOf(pl.Points)
			if !ok {
				continue
			}
			if s.boundsState == boundsEmpty {
				s.bounds = r
				s.boundsState = boundsReady
			} else {
				s.bounds = s.bounds.Union(r)
			}
		}
	}
	return s.bounds, s.boundsState == boundsReady
}

// InvalidateBounds drops the cached bounding box.
func (s *Section) InvalidateBounds() {
	s.boundsState = boundsStale
	s.bounds = geometry.Rect{}
}

// AddPolyline appends a stroke and returns its index.
func (s *Section) AddPolyline(points []geometry.Point, page int) int {
	pts := make([]geometry.Point, len(points))
	copy(pts, points)
	s.Polylines = append(s.Polylines, Polyline{Points: pts, Page: page})
	s.InvalidateBounds()
	return len(s.Polylines) - 1
}

// RemovePolyline deletes the stroke at index i.
func (s *Section) RemovePolyline(i int) error {
	if err := s.checkPolyline(i); err != nil {
		return err
	}
	s.Polylines = append(s.Polylines[:i], s.Polylines[i+1:]...)
	s.InvalidateBounds()
	return nil
}

// SetPolylinePoints replaces the point list of stroke i.
func (s *Section) SetPolylinePoints(i int, points []geometry.Point) error {
	if err := s.checkPolyline(i); err != nil {
		return err
	}
	pts := make([]geometry.Point, len(points))
	copy(pts, points)
	s.Polylines[i].Points = pts
	s.InvalidateBounds()
	return nil
}

// MovePolylinePoint moves vertex j of stroke i to p.
func (s *Section) MovePolylinePoint(i, j int, p geometry.Point) error {
	if err := s.checkPoint(i, j); err != nil {
		return err
	}
	s.Polylines[i].Points[j] = p
	s.InvalidateBounds()
	return nil
}

// InsertPolylinePoint inserts p before vertex j of stroke i. j may equal the
// point count to append.
func (s *Section) InsertPolylinePoint(i, j int, p geometry.Point) error {
	if err := s.checkPolyline(i); err != nil {
		return err
	}
	pts := s.Polylines[i].Points
	if j < 0 || j > len(pts) {
		return fmt.Errorf("point index %d out of range for polyline with %d points", j, len(pts))
	}
	pts = append(pts, geometry.Point{})
	copy(pts[j+1:], pts[j:])
	pts[j] = p
	s.Polylines[i].Points = pts
	s.InvalidateBounds()
	return nil
}

// DeletePolylinePoint removes vertex j of stroke i. A stroke must keep at
// least two points; delete the polyline instead.
func (s *Section) DeletePolylinePoint(i, j int) error {
	if err := s.checkPoint(i, j); err != nil {
		return err
	}
	pts := s.Polylines[i].Points
	if len(pts) <= 2 {
		return fmt.Errorf("polyline %d has only %d points; remove the polyline instead", i, len(pts))
	}
	s.Polylines[i].Points = append(pts[:j], pts[j+1:]...)
	s.InvalidateBounds()
	return nil
}

// TranslatePolyline shifts every vertex of stroke i by (dx, dy).
func (s *Section) TranslatePolyline(i int, dx, dy float64) error {
	if err := s.checkPolyline(i); err != nil {
		return err
	}
	d := geometry.Point{X: dx, Y: dy}
	for j, p := range s.Polylines[i].Points {
		s.Polylines[i].Points[j] = p.Add(d)
	}
	s.InvalidateBounds()
	return nil
}

// Clone returns a deep copy of s with a stale bounds cache.
func (s *Section) Clone() *Section {
	c := &Section{Name: s.Name, Color: s.Color}
	if s.LineSize != nil {
		v := *s.LineSize
		c.LineSize = &v
	}
	c.Polylines = make([]Polyline, len(s.Polylines))
	for i, pl := range s.Polylines {
		c.Polylines[i] = pl.clone()
	}
	return c
}

func (s *Section) checkPolyline(i int) error {
	if i < 0 || i >= len(s.Polylines) {
		return fmt.Errorf("section %q has no polyline %d", s.Name, i)
	}
	return nil
}

func (s *Section) checkPoint(i, j int) error {
	if err := s.checkPolyline(i); err != nil {
		return err
	}
	if j < 0 || j >= len(s.Polylines[i].Points) {
		return fmt.Errorf("point index %d out of range for polyline with %d points", j, len(s.Polylines[i].Points))
	}
	return nil
}
