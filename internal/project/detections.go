package project

import (
	"fmt"

	"github.com/ironsheep/spectra-mcp/internal/categories"
	"github.com/ironsheep/spectra-mcp/internal/geometry"
	"github.com/ironsheep/spectra-mcp/internal/model"
)

// AllFilter matches every section or category in FilterDetections.
const AllFilter = "All"

// pasteOffset shifts a pasted box when no target position is given.
const pasteOffset = 20

// Detection returns the detection at index i.
func (p *Project) Detection(i int) (*model.Detection, error) {
	if i < 0 || i >= len(p.Detections) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrDetectionNotFound, i, len(p.Detections))
	}
	return p.Detections[i], nil
}

// AddManualDetection places a user-drawn box and assigns it. It returns the
// new detection's index.
func (p *Project) AddManualDetection(name string, box model.BBox, page int) (int, error) {
	if err := box.Valid(model.MinBoxSize); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBox, err)
	}
	d := model.NewDetection(name, 1, box, page, model.SourceManual)
	p.Detections = append(p.Detections, d)
	p.invalidate()
	p.logger.Info("added manual detection", "name", name, "page", page, "section", d.Section)
	return len(p.Detections) - 1, nil
}

// ImportModelDetections replaces every model-sourced detection with the given
// ones, keeping manual detections. Raw detector class labels are mapped to
// object categories; boxes below the minimum size are dropped. It returns the
// number of detections imported.
func (p *Project) ImportModelDetections(detections []*model.Detection) int {
	kept := p.Detections[:0:0]
	for _, d := range p.Detections {
		if d.Source == model.SourceManual {
			kept = append(kept, d)
		}
	}

	imported := 0
	for _, d := range detections {
		if d.BBox.Valid(model.MinBoxSize) != nil {
			p.logger.Debug("dropping degenerate detection", "name", d.Name, "bbox", d.BBox)
			continue
		}
		c := d.Clone()
		c.Name = categories.ObjectCategory(c.Name)
		c.Source = model.SourceModel
		c.Section = model.Unassigned
		c.Color = nil
		if c.Count < 1 {
			c.Count = 1
		}
		kept = append(kept, c)
		imported++
	}

	p.Detections = kept
	p.invalidate()
	p.logger.Info("imported model detections", "imported", imported, "total", len(p.Detections))
	return imported
}

// MoveDetection shifts a box by (dx, dy) pixels and optionally onto another
// page (page > 0).
func (p *Project) MoveDetection(i, dx, dy, page int) error {
	d, err := p.Detection(i)
	if err != nil {
		return err
	}
	d.BBox = d.BBox.Offset(dx, dy)
	if page > 0 {
		d.Page = page
	}
	p.invalidate()
	return nil
}

// ResizeDetection replaces a box. Resized boxes must be at least
// MinResizeBoxSize pixels on each side.
func (p *Project) ResizeDetection(i int, box model.BBox) error {
	d, err := p.Detection(i)
	if err != nil {
		return err
	}
	if err := box.Valid(model.MinResizeBoxSize); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBox, err)
	}
	d.BBox = box
	p.invalidate()
	return nil
}

// DeleteDetection removes the detection at index i.
func (p *Project) DeleteDetection(i int) error {
	if _, err := p.Detection(i); err != nil {
		return err
	}
	p.Detections = append(p.Detections[:i], p.Detections[i+1:]...)
	p.invalidate()
	return nil
}

// SetDetectionCategory changes a detection's object category.
func (p *Project) SetDetectionCategory(i int, name string) error {
	d, err := p.Detection(i)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("category cannot be empty")
	}
	d.Name = name
	return nil
}

// SetDetectionSection assigns a detection to a section by hand, or to
// Unassigned. The choice is written into the assignment cache and is saved
// with the project; it holds until the next geometric change.
func (p *Project) SetDetectionSection(i int, section string) error {
	d, err := p.Detection(i)
	if err != nil {
		return err
	}
	if section == model.Unassigned {
		d.Section = model.Unassigned
		d.Color = nil
		p.cache.Record(d)
		return nil
	}
	s, err := p.Section(section)
	if err != nil {
		return err
	}
	d.Section = s.Name
	col := s.Color
	d.Color = &col
	p.cache.Record(d)
	return nil
}

// SetDetectionLineSize sets or clears a detection's line size override.
func (p *Project) SetDetectionLineSize(i int, size *float64) error {
	d, err := p.Detection(i)
	if err != nil {
		return err
	}
	if size != nil {
		if *size < 0 {
			return fmt.Errorf("line size must not be negative, got %g", *size)
		}
		if *size > LargeLineSize {
			p.logger.Warn("unusually large line size", "detection", i, "line_size_mm", *size)
		}
		v := *size
		size = &v
	}
	d.LineSize = size
	return nil
}

// SetDetectionCount sets how many physical items a box represents.
func (p *Project) SetDetectionCount(i, count int) error {
	d, err := p.Detection(i)
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}
	d.Count = count
	return nil
}

// DetectionUpdate lists the fields UpdateDetection changes. Nil fields are
// left alone. LineSize is only applied when SetLineSize is true, so a nil
// LineSize with SetLineSize clears the override.
type DetectionUpdate struct {
	Name        *string
	Section     *string
	SetLineSize bool
	LineSize    *float64
	Count       *int
}

// UpdateDetection validates every field of u before changing anything, then
// applies them. On error detection i is untouched.
func (p *Project) UpdateDetection(i int, u DetectionUpdate) error {
	if _, err := p.Detection(i); err != nil {
		return err
	}
	if u.Name != nil && *u.Name == "" {
		return fmt.Errorf("category cannot be empty")
	}
	if u.Section != nil && *u.Section != model.Unassigned {
		if _, err := p.Section(*u.Section); err != nil {
			return err
		}
	}
	if u.SetLineSize && u.LineSize != nil && *u.LineSize < 0 {
		return fmt.Errorf("line size must not be negative, got %g", *u.LineSize)
	}
	if u.Count != nil && *u.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", *u.Count)
	}

	if u.Name != nil {
		if err := p.SetDetectionCategory(i, *u.Name); err != nil {
			return err
		}
	}
	if u.Section != nil {
		if err := p.SetDetectionSection(i, *u.Section); err != nil {
			return err
		}
	}
	if u.SetLineSize {
		if err := p.SetDetectionLineSize(i, u.LineSize); err != nil {
			return err
		}
	}
	if u.Count != nil {
		if err := p.SetDetectionCount(i, *u.Count); err != nil {
			return err
		}
	}
	return nil
}

// Copy places a copy of detection i on the clipboard.
func (p *Project) Copy(i int) error {
	d, err := p.Detection(i)
	if err != nil {
		return err
	}
	p.clipboard = d.Clone()
	p.clipboardCut = false
	return nil
}

// Cut removes detection i and places it on the clipboard. The clipboard is
// emptied by the next Paste.
func (p *Project) Cut(i int) error {
	d, err := p.Detection(i)
	if err != nil {
		return err
	}
	p.clipboard = d.Clone()
	p.clipboardCut = true
	p.Detections = append(p.Detections[:i], p.Detections[i+1:]...)
	p.invalidate()
	return nil
}

// Paste inserts the clipboard detection on page. With a nil at the box keeps
// its size and is offset by 20 pixels; otherwise its top-left corner is
// placed at at. It returns the new detection's index.
func (p *Project) Paste(at *geometry.Point, page int) (int, error) {
	if p.clipboard == nil {
		return 0, ErrEmptyClipboard
	}
	d := p.clipboard.Clone()
	if at != nil {
		x, y := int(at.X), int(at.Y)
		d.BBox = model.BBox{X1: x, Y1: y, X2: x + d.BBox.Width(), Y2: y + d.BBox.Height()}
	} else {
		d.BBox = d.BBox.Offset(pasteOffset, pasteOffset)
	}
	if page > 0 {
		d.Page = page
	}
	d.Section = model.Unassigned
	d.Color = nil
	p.Detections = append(p.Detections, d)

	if p.clipboardCut {
		p.clipboard = nil
		p.clipboardCut = false
	}
	p.invalidate()
	return len(p.Detections) - 1, nil
}

// IndexedDetection pairs a detection with its index in the project.
type IndexedDetection struct {
	Index int `json:"index"`
	*model.Detection
}

// FilterDetections returns detections matching section and category. Either
// filter may be AllFilter or empty to match everything.
func (p *Project) FilterDetections(section, category string) []IndexedDetection {
	var out []IndexedDetection
	for i, d := range p.Detections {
		if section != "" && section != AllFilter && d.Section != section {
			continue
		}
		if category != "" && category != AllFilter && d.Name != category {
			continue
		}
		out = append(out, IndexedDetection{Index: i, Detection: d})
	}
	return out
}

// SectionAt returns the name of the most recent section with a closed
// polyline containing pt on page, or Unassigned.
func (p *Project) SectionAt(pt geometry.Point, page int) string {
	for i := len(p.Sections) - 1; i >= 0; i-- {
		s := p.Sections[i]
		for _, pl := range s.Polylines {
			if page != 0 && pl.Page != page {
				continue
			}
			if geometry.PointInPolygon(pt, pl.Points) {
				return s.Name
			}
		}
	}
	return model.Unassigned
}
