package assign

import (
	"github.com/ironsheep/spectra-mcp/internal/geometry"
	"github.com/ironsheep/spectra-mcp/internal/model"
)

// Engine maps detection boxes to sections. The zero value is ready to use.
type Engine struct{}

// Assign returns the name of the section owning box on page, or
// model.Unassigned.
func (e Engine) Assign(sections []*model.Section, box model.BBox, page int) string {
	if s := e.Owner(sections, box, page); s != nil {
		return s.Name
	}
	return model.Unassigned
}

// Owner returns the section owning box on page, or nil.
func (e Engine) Owner(sections []*model.Section, box model.BBox, page int) *model.Section {
	return owner(sections, box, page, true)
}

// AssignBruteForce is Assign without the bounding-box pre-filter.
func (e Engine) AssignBruteForce(sections []*model.Section, box model.BBox, page int) string {
	if s := owner(sections, box, page, false); s != nil {
		return s.Name
	}
	return model.Unassigned
}

// AssignAll writes Section and Color on every detection. The result is the
// same as calling Assign for each detection independently.
func (e Engine) AssignAll(sections []*model.Section, detections []*model.Detection) {
	for _, d := range detections {
		apply(d, e.Owner(sections, d.BBox, d.Page))
	}
}

func owner(sections []*model.Section, box model.BBox, page int, prefilter bool) *model.Section {
	rect := box.Rect().Normalize()
	for i := len(sections) - 1; i >= 0; i-- {
		s := sections[i]
		if prefilter {
			// A section without points has no bounds and falls through to the
			// detailed test, which cannot match.
			if b, ok := s.Bounds(); ok && !b.Overlaps(rect) {
				continue
			}
		}
		if sectionIntersects(s, rect, page) {
			return s
		}
	}
	return nil
}

func sectionIntersects(s *model.Section, rect geometry.Rect, page int) bool {
	for _, pl := range s.Polylines {
		if page != 0 && pl.Page != page {
			continue
		}
		if geometry.PolylineIntersectsRect(pl.Points, rect) {
			return true
		}
	}
	return false
}

// apply sets the detection's section and display color from s, or marks it
// unassigned when s is nil.
func apply(d *model.Detection, s *model.Section) {
	if s == nil {
		d.Section = model.Unassigned
		d.Color = nil
		return
	}
	c := s.Color
	d.Section = s.Name
	d.Color = &c
}
