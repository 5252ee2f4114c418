package model

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/spectra-mcp/internal/geometry"
)

// Unassigned is the section name of a detection that no section owns.
const Unassigned = "Unassigned"

// Minimum box edge lengths in pixels.
const (
	MinBoxSize       = 1
	MinResizeBoxSize = 5
)

// Source records where a detection came from.
type Source string

const (
	SourceModel  Source = "model"
	SourceManual Source = "manual"
)

// BBox is an integer pixel bounding box in page-image space. It is persisted
// as a four element array [x1, y1, x2, y2].
type BBox struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// Rect converts the box to a geometry rectangle.
func (b BBox) Rect() geometry.Rect {
	return geometry.Rect{X1: float64(b.X1), Y1: float64(b.Y1), X2: float64(b.X2), Y2: float64(b.Y2)}
}

// Width returns X2 - X1.
func (b BBox) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b BBox) Height() int { return b.Y2 - b.Y1 }

// Offset returns the box shifted by (dx, dy).
func (b BBox) Offset(dx, dy int) BBox {
	return BBox{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// Valid checks x1 < x2, y1 < y2 and that both edges are at least minSize long.
func (b BBox) Valid(minSize int) error {
	if b.X1 >= b.X2 || b.Y1 >= b.Y2 {
		return fmt.Errorf("invalid box (%d,%d)-(%d,%d): x1 must be < x2, y1 must be < y2", b.X1, b.Y1, b.X2, b.Y2)
	}
	if b.Width() < minSize || b.Height() < minSize {
		return fmt.Errorf("box %dx%d is smaller than the %dpx minimum", b.Width(), b.Height(), minSize)
	}
	return nil
}

// MarshalJSON encodes the box as [x1, y1, x2, y2].
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X1, b.Y1, b.X2, b.Y2})
}

// UnmarshalJSON decodes a four element array.
func (b *BBox) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("bbox must be an array of integers: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("bbox must have 4 values, got %d", len(v))
	}
	*b = BBox{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
	return nil
}

// Detection is one recognized or manually placed object instance.
//
// Section is written by the assignment engine or by an explicit user edit.
// Color mirrors the owning section's color for display and is nil while the
// detection is Unassigned; it is derived state and is never persisted.
type Detection struct {
	// Name is the object category label, e.g. "Manual Valve".
	Name string `json:"name"`

	// Confidence is the detector score in [0,1]; manual detections use 1.
	Confidence float64 `json:"confidence"`

	// BBox is the pixel bounding box on the page image.
	BBox BBox `json:"bbox"`

	// Page is the 1-indexed page number. Zero means the page is unknown and the
	// detection is matched against polylines on every page.
	Page int `json:"page_num"`

	// Section is the owning section name or Unassigned.
	Section string `json:"section"`

	// Source is SourceModel or SourceManual.
	Source Source `json:"source"`

	// LineSize overrides the owning section's line size in mm when non-nil.
	LineSize *float64 `json:"line_size"`

	// Count is the number of physical instances represented by this box.
	Count int `json:"count"`

	Color *Color `json:"-"`
}

// NewDetection returns a detection with the documented defaults applied.
func NewDetection(name string, confidence float64, box BBox, page int, source Source) *Detection {
	return &Detection{
		Name:       name,
		Confidence: confidence,
		BBox:       box,
		Page:       page,
		Section:    Unassigned,
		Source:     source,
		Count:      1,
	}
}

// Clone returns a deep copy of d.
func (d *Detection) Clone() *Detection {
	c := *d
	if d.LineSize != nil {
		v := *d.LineSize
		c.LineSize = &v
	}
	if d.Color != nil {
		v := *d.Color
		c.Color = &v
	}
	return &c
}

// UnmarshalJSON applies defaults for fields absent from older project files.
func (d *Detection) UnmarshalJSON(data []byte) error {
	type plain Detection
	v := plain{
		Page:    1,
		Section: Unassigned,
		Source:  SourceModel,
		Count:   1,
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Section == "" {
		v.Section = Unassigned
	}
	*d = Detection(v)
	return nil
}
