package project

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ironsheep/spectra-mcp/internal/geometry"
	"github.com/ironsheep/spectra-mcp/internal/model"
)

// newSectionBase is the prefix of automatically named sections.
const newSectionBase = "New Section"

// LargeLineSize is the line size in mm above which a value is accepted but
// logged as suspicious.
const LargeLineSize = 2000.0

// Section returns the section called name.
func (p *Project) Section(name string) (*model.Section, error) {
	i := p.sectionIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, name)
	}
	return p.Sections[i], nil
}

func (p *Project) sectionIndex(name string) int {
	for i, s := range p.Sections {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// UniqueSectionName returns "base N" for the smallest N >= 1 not in use.
func (p *Project) UniqueSectionName(base string) string {
	used := make(map[string]bool, len(p.Sections))
	for _, s := range p.Sections {
		used[s.Name] = true
	}
	for i := 1; ; i++ {
		name := base + " " + strconv.Itoa(i)
		if !used[name] {
			return name
		}
	}
}

// newSection appends a section with the next palette color.
func (p *Project) newSection(name string, lineSize *float64) *model.Section {
	s := model.NewSection(name, lineSize, model.PaletteColor(p.nextColor))
	p.nextColor++
	p.Sections = append(p.Sections, s)
	return s
}

// AddSection appends an empty section named "New Section N".
func (p *Project) AddSection() *model.Section {
	s := p.newSection(p.UniqueSectionName(newSectionBase), nil)
	p.invalidate()
	p.logger.Info("added section", "section", s.Name)
	return s
}

// AddSectionWithPoints creates a new section from a drawn polyline.
func (p *Project) AddSectionWithPoints(points []geometry.Point, page int) (*model.Section, error) {
	if err := checkPolyline(points); err != nil {
		return nil, err
	}
	s := p.newSection(p.UniqueSectionName(newSectionBase), nil)
	s.AddPolyline(points, page)
	p.invalidate()
	p.logger.Info("drew section", "section", s.Name, "page", page, "points", len(points))
	return s, nil
}

// AddPolylineToSection appends a drawn polyline to an existing section and
// returns its index.
func (p *Project) AddPolylineToSection(name string, points []geometry.Point, page int) (int, error) {
	if err := checkPolyline(points); err != nil {
		return 0, err
	}
	s, err := p.Section(name)
	if err != nil {
		return 0, err
	}
	i := s.AddPolyline(points, page)
	p.invalidate()
	return i, nil
}

// RemovePolyline deletes polyline i of a section.
func (p *Project) RemovePolyline(name string, i int) error {
	s, err := p.Section(name)
	if err != nil {
		return err
	}
	if err := s.RemovePolyline(i); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// EditKind selects the polyline edit performed by EditPolyline.
type EditKind string

const (
	EditMovePoint   EditKind = "move_point"
	EditInsertPoint EditKind = "insert_point"
	EditDeletePoint EditKind = "delete_point"
	EditTranslate   EditKind = "translate"
)

// PolylineEdit describes one vertex-level change to a polyline.
//
// Point is the new position for move_point and insert_point; for translate
// it is the (dx, dy) offset. PointIndex is ignored by translate.
type PolylineEdit struct {
	Kind       EditKind       `json:"kind"`
	Polyline   int            `json:"polyline"`
	PointIndex int            `json:"point_index"`
	Point      geometry.Point `json:"point"`
}

// EditPolyline applies a vertex edit to a section's polyline.
func (p *Project) EditPolyline(name string, edit PolylineEdit) error {
	s, err := p.Section(name)
	if err != nil {
		return err
	}

	switch edit.Kind {
	case EditMovePoint:
		err = s.MovePolylinePoint(edit.Polyline, edit.PointIndex, edit.Point)
	case EditInsertPoint:
		err = s.InsertPolylinePoint(edit.Polyline, edit.PointIndex, edit.Point)
	case EditDeletePoint:
		err = s.DeletePolylinePoint(edit.Polyline, edit.PointIndex)
	case EditTranslate:
		err = s.TranslatePolyline(edit.Polyline, edit.Point.X, edit.Point.Y)
	default:
		return fmt.Errorf("unknown polyline edit %q", edit.Kind)
	}
	if err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// RenameSection renames a section and every detection that referenced it.
func (p *Project) RenameSection(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.New("section name cannot be empty")
	}
	s, err := p.Section(oldName)
	if err != nil {
		return err
	}
	if newName == oldName {
		return nil
	}
	if newName == model.Unassigned || p.sectionIndex(newName) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateSection, newName)
	}

	s.Name = newName
	for _, d := range p.Detections {
		if d.Section == oldName {
			d.Section = newName
		}
	}
	p.invalidate()
	p.logger.Info("renamed section", "from", oldName, "to", newName)
	return nil
}

// SetSectionLineSize sets or clears (nil) a section's line size in mm.
// Negative sizes are rejected; sizes above LargeLineSize are kept with a
// warning.
func (p *Project) SetSectionLineSize(name string, size *float64) error {
	s, err := p.Section(name)
	if err != nil {
		return err
	}
	if size != nil {
		if *size < 0 {
			return fmt.Errorf("line size must not be negative, got %g", *size)
		}
		if *size > LargeLineSize {
			p.logger.Warn("unusually large line size", "section", name, "line_size_mm", *size)
		}
		v := *size
		size = &v
	}
	s.LineSize = size
	p.invalidate()
	return nil
}

// SetSectionColor changes a section's display color. Member detections pick
// up the new color on the following reassignment.
func (p *Project) SetSectionColor(name string, c model.Color) error {
	s, err := p.Section(name)
	if err != nil {
		return err
	}
	s.Color = c
	p.invalidate()
	return nil
}

// DeleteSection removes a section. Its detections are reassigned to whatever
// section now owns them, or Unassigned.
func (p *Project) DeleteSection(name string) error {
	i := p.sectionIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrSectionNotFound, name)
	}
	p.Sections = append(p.Sections[:i], p.Sections[i+1:]...)
	for _, d := range p.Detections {
		if d.Section == name {
			d.Section = model.Unassigned
			d.Color = nil
		}
	}
	p.invalidate()
	p.logger.Info("deleted section", "section", name)
	return nil
}

// MoveSectionUp swaps a section with its predecessor. Order decides ties, so
// detections are reassigned. Moving the first section is a no-op.
func (p *Project) MoveSectionUp(name string) error {
	return p.moveSection(name, -1)
}

// MoveSectionDown swaps a section with its successor.
func (p *Project) MoveSectionDown(name string) error {
	return p.moveSection(name, 1)
}

func (p *Project) moveSection(name string, delta int) error {
	i := p.sectionIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrSectionNotFound, name)
	}
	j := i + delta
	if j < 0 || j >= len(p.Sections) {
		return nil
	}
	p.Sections[i], p.Sections[j] = p.Sections[j], p.Sections[i]
	p.invalidate()
	return nil
}

// ImportSectionsCSV appends sections from rows of name[,line_size]. Blank
// names and names already present are skipped; an unparsable line size leaves
// the section without one. It returns the names that were added.
func (p *Project) ImportSectionsCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	existing := make(map[string]bool, len(p.Sections))
	for _, s := range p.Sections {
		existing[s.Name] = true
	}

	var added []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return added, fmt.Errorf("failed to read sections CSV: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		name := strings.TrimSpace(rec[0])
		if name == "" || existing[name] {
			continue
		}

		var lineSize *float64
		if len(rec) > 1 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64); err == nil && v >= 0 {
				lineSize = &v
			}
		}
		p.newSection(name, lineSize)
		existing[name] = true
		added = append(added, name)
	}

	if len(added) > 0 {
		p.invalidate()
		p.logger.Info("imported sections", "count", len(added))
	}
	return added, nil
}

func checkPolyline(points []geometry.Point) error {
	if len(points) < 2 {
		return fmt.Errorf("a polyline needs at least 2 points, got %d", len(points))
	}
	return nil
}
