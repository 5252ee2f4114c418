package model

import (
	"encoding/json"
	"testing"

	"github.com/ironsheep/spectra-mcp/internal/geometry"
)

func TestPaletteColor(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "#ff0000"},
		{4, "#00ff00"},
		{8, "#0000ff"},
		{12, "#ff0000"},
		{-12, "#ff0000"},
	}

	for _, tt := range tests {
		if got := PaletteColor(tt.index).Hex(); got != tt.want {
			t.Errorf("PaletteColor(%d): got %s, want %s", tt.index, got, tt.want)
		}
	}

	seen := make(map[Color]bool)
	for i := 0; i < 12; i++ {
		seen[PaletteColor(i)] = true
	}
	if len(seen) != 12 {
		t.Errorf("expected 12 distinct palette colors, got %d", len(seen))
	}
}

func TestColor_JSON(t *testing.T) {
	c := Color{R: 0x12, G: 0xab, B: 0xff}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"#12abff"` {
		t.Errorf("Marshal: got %s", data)
	}

	var decoded Color
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded != c {
		t.Errorf("Unmarshal: got %+v, want %+v", decoded, c)
	}

	if err := json.Unmarshal([]byte(`"not-a-color"`), &decoded); err == nil {
		t.Error("expected error for invalid color string")
	}
}

func TestBBox_Valid(t *testing.T) {
	tests := []struct {
		name    string
		box     BBox
		minSize int
		wantErr bool
	}{
		{"normal", BBox{0, 0, 10, 10}, MinBoxSize, false},
		{"one pixel", BBox{0, 0, 1, 1}, MinBoxSize, false},
		{"inverted x", BBox{10, 0, 0, 10}, MinBoxSize, true},
		{"zero height", BBox{0, 5, 10, 5}, MinBoxSize, true},
		{"too small for resize", BBox{0, 0, 4, 10}, MinResizeBoxSize, true},
		{"resize minimum", BBox{0, 0, 5, 5}, MinResizeBoxSize, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.box.Valid(tt.minSize)
			if (err != nil) != tt.wantErr {
				t.Errorf("Valid: got err=%v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetection_UnmarshalDefaults(t *testing.T) {
	var d Detection
	if err := json.Unmarshal([]byte(`{"name":"Flange","confidence":0.8,"bbox":[1,2,3,4]}`), &d); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if d.Section != Unassigned {
		t.Errorf("Section: got %q, want %q", d.Section, Unassigned)
	}
	if d.Source != SourceModel {
		t.Errorf("Source: got %q, want %q", d.Source, SourceModel)
	}
	if d.Count != 1 {
		t.Errorf("Count: got %d, want 1", d.Count)
	}
	if d.Page != 1 {
		t.Errorf("Page: got %d, want 1", d.Page)
	}
	if d.BBox != (BBox{1, 2, 3, 4}) {
		t.Errorf("BBox: got %+v", d.BBox)
	}
	if d.LineSize != nil {
		t.Errorf("LineSize: got %v, want nil", *d.LineSize)
	}
}

func TestDetection_JSONOmitsColor(t *testing.T) {
	d := NewDetection("Flange", 0.9, BBox{0, 0, 10, 10}, 2, SourceManual)
	red := PaletteColor(0)
	d.Color = &red

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := raw["color"]; ok {
		t.Error("display color must not be persisted")
	}
	for _, key := range []string{"name", "confidence", "bbox", "page_num", "section", "source", "line_size", "count"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestSection_BoundsCache(t *testing.T) {
	s := NewSection("Header", nil, PaletteColor(0))

	if _, ok := s.Bounds(); ok {
		t.Fatal("empty section should have no bounds")
	}

	s.AddPolyline([]geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, 1)
	r, ok := s.Bounds()
	if !ok || r != (geometry.Rect{X1: 0, Y1: 0, X2: 100, Y2: 0}) {
		t.Fatalf("Bounds after add: got %+v ok=%v", r, ok)
	}

	s.AddPolyline([]geometry.Point{{X: 50, Y: -20}, {X: 60, Y: 300}}, 2)
	r, _ = s.Bounds()
	if r != (geometry.Rect{X1: 0, Y1: -20, X2: 100, Y2: 300}) {
		t.Errorf("Bounds after second add: got %+v", r)
	}

	if err := s.MovePolylinePoint(0, 1, geometry.Point{X: 500, Y: 0}); err != nil {
		t.Fatalf("MovePolylinePoint: %v", err)
	}
	r, _ = s.Bounds()
	if r.X2 != 500 {
		t.Errorf("Bounds after move: got %+v", r)
	}

	if err := s.TranslatePolyline(1, 1000, 0); err != nil {
		t.Fatalf("TranslatePolyline: %v", err)
	}
	r, _ = s.Bounds()
	if r.X2 != 1060 {
		t.Errorf("Bounds after translate: got %+v", r)
	}

	if err := s.RemovePolyline(1); err != nil {
		t.Fatalf("RemovePolyline: %v", err)
	}
	r, _ = s.Bounds()
	if r != (geometry.Rect{X1: 0, Y1: 0, X2: 500, Y2: 0}) {
		t.Errorf("Bounds after remove: got %+v", r)
	}

	// Non-structural edits keep the cached value
	s.Name = "Renamed"
	s.Color = PaletteColor(3)
	if r2, _ := s.Bounds(); r2 != r {
		t.Errorf("Bounds changed after rename: got %+v", r2)
	}
}

func TestSection_PointEdits(t *testing.T) {
	s := NewSection("A", nil, Color{})
	s.AddPolyline([]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, 1)

	if err := s.InsertPolylinePoint(0, 1, geometry.Point{X: 5, Y: 5}); err != nil {
		t.Fatalf("InsertPolylinePoint: %v", err)
	}
	if got := len(s.Polylines[0].Points); got != 3 {
		t.Fatalf("expected 3 points, got %d", got)
	}
	if s.Polylines[0].Points[1] != (geometry.Point{X: 5, Y: 5}) {
		t.Errorf("inserted point: got %+v", s.Polylines[0].Points[1])
	}

	if err := s.DeletePolylinePoint(0, 1); err != nil {
		t.Fatalf("DeletePolylinePoint: %v", err)
	}
	if err := s.DeletePolylinePoint(0, 0); err == nil {
		t.Error("expected error deleting below two points")
	}
	if err := s.MovePolylinePoint(3, 0, geometry.Point{}); err == nil {
		t.Error("expected error for missing polyline")
	}
	if err := s.InsertPolylinePoint(0, 9, geometry.Point{}); err == nil {
		t.Error("expected error for out of range insert")
	}
}

func TestSection_JSONRoundTrip(t *testing.T) {
	size := 50.0
	s := NewSection("Header", &size, PaletteColor(2))
	s.AddPolyline([]geometry.Point{{X: 0, Y: 0}, {X: 100.5, Y: 20}}, 3)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Section
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Name != "Header" || decoded.LineSize == nil || *decoded.LineSize != 50 {
		t.Errorf("decoded fields: %+v", decoded)
	}
	if decoded.Color != s.Color {
		t.Errorf("Color: got %v, want %v", decoded.Color, s.Color)
	}
	if len(decoded.Polylines) != 1 || decoded.Polylines[0].Page != 3 || decoded.Polylines[0].Points[1].X != 100.5 {
		t.Errorf("Polylines: got %+v", decoded.Polylines)
	}
	if r, ok := decoded.Bounds(); !ok || r.X2 != 100.5 {
		t.Errorf("decoded section bounds: got %+v ok=%v", r, ok)
	}
}

func TestSection_CloneIsDeep(t *testing.T) {
	size := 10.0
	s := NewSection("A", &size, Color{})
	s.AddPolyline([]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, 1)

	c := s.Clone()
	c.Polylines[0].Points[0].X = 99
	*c.LineSize = 20

	if s.Polylines[0].Points[0].X != 0 {
		t.Error("clone shares polyline points")
	}
	if *s.LineSize != 10 {
		t.Error("clone shares line size")
	}
}
