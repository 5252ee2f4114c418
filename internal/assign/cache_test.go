package assign

import (
	"testing"

	"github.com/ironsheep/spectra-mcp/internal/model"
)

func snapshot(detections []*model.Detection) []string {
	out := make([]string, len(detections))
	for i, d := range detections {
		c := "none"
		if d.Color != nil {
			c = d.Color.Hex()
		}
		out[i] = d.Section + "/" + c
	}
	return out
}

func equalSnapshots(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fixture() ([]*model.Section, []*model.Detection) {
	sections := []*model.Section{
		newSection("A", 0, 1, pts(0, 0, 1000, 0)),
		newSection("B", 1, 1, pts(0, 500, 1000, 500)),
	}
	detections := []*model.Detection{
		model.NewDetection("Flange", 0.9, model.BBox{X1: 10, Y1: -5, X2: 20, Y2: 5}, 1, model.SourceModel),
		model.NewDetection("Flange", 0.9, model.BBox{X1: 10, Y1: 495, X2: 20, Y2: 505}, 1, model.SourceModel),
		model.NewDetection("Flange", 0.9, model.BBox{X1: 10, Y1: 200, X2: 20, Y2: 210}, 1, model.SourceModel),
	}
	return sections, detections
}

func TestCache_Idempotent(t *testing.T) {
	sections, detections := fixture()
	c := NewCache()
	var e Engine

	first := c.AssignAll(e, sections, detections)
	if first.Served {
		t.Fatal("first call must not be served from cache")
	}
	want := snapshot(detections)

	second := c.AssignAll(e, sections, detections)
	if !second.Served {
		t.Error("second call with no mutation should be served from cache")
	}
	if got := snapshot(detections); !equalSnapshots(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if want[0] != "A/"+model.PaletteColor(0).Hex() || want[1] != "B/"+model.PaletteColor(1).Hex() || want[2] != "Unassigned/none" {
		t.Errorf("unexpected assignment %v", want)
	}
}

func TestCache_InvalidateAfterGeometryEdit(t *testing.T) {
	sections, detections := fixture()
	c := NewCache()
	var e Engine
	c.AssignAll(e, sections, detections)

	// Move section B's line onto the unassigned detection. Polyline count and
	// name are unchanged so the fingerprint cannot see this edit.
	if err := sections[1].SetPolylinePoints(0, pts(0, 205, 1000, 205)); err != nil {
		t.Fatal(err)
	}
	c.Invalidate()
	stats := c.AssignAll(e, sections, detections)
	if stats.Served {
		t.Error("call after Invalidate must recompute")
	}

	fresh := make([]*model.Detection, len(detections))
	for i, d := range detections {
		fresh[i] = d.Clone()
	}
	e.AssignAll(sections, fresh)

	if got, want := snapshot(detections), snapshot(fresh); !equalSnapshots(got, want) {
		t.Errorf("cached %v, fresh %v", got, want)
	}
	if detections[2].Section != "B" {
		t.Errorf("moved line should capture detection 2, got %q", detections[2].Section)
	}
}

func TestCache_StaleWithoutInvalidate(t *testing.T) {
	sections, detections := fixture()
	c := NewCache()
	var e Engine
	c.AssignAll(e, sections, detections)

	if err := sections[1].SetPolylinePoints(0, pts(0, 205, 1000, 205)); err != nil {
		t.Fatal(err)
	}
	stats := c.AssignAll(e, sections, detections)

	// Callers are required to invalidate; skipping it replays the old sweep.
	if !stats.Served {
		t.Fatal("expected the unchanged fingerprints to serve from cache")
	}
	if detections[2].Section != model.Unassigned {
		t.Errorf("expected stale Unassigned, got %q", detections[2].Section)
	}
}

func TestCache_FingerprintChangeRecomputes(t *testing.T) {
	sections, detections := fixture()
	c := NewCache()
	var e Engine
	c.AssignAll(e, sections, detections)

	t.Run("detection moved", func(t *testing.T) {
		detections[2].BBox = model.BBox{X1: 10, Y1: 495, X2: 20, Y2: 505}
		stats := c.AssignAll(e, sections, detections)
		if stats.Served {
			t.Error("moved detection should change the fingerprint")
		}
		if detections[2].Section != "B" {
			t.Errorf("got %q, want B", detections[2].Section)
		}
	})

	t.Run("section added", func(t *testing.T) {
		sections = append(sections, newSection("C", 2, 1, pts(0, 0, 1000, 0)))
		stats := c.AssignAll(e, sections, detections)
		if stats.Served {
			t.Error("added section should change the fingerprint")
		}
		if detections[0].Section != "C" {
			t.Errorf("got %q, want C", detections[0].Section)
		}
	})

	t.Run("section renamed", func(t *testing.T) {
		sections[2].Name = "C2"
		stats := c.AssignAll(e, sections, detections)
		if stats.Served {
			t.Error("renamed section should change the fingerprint")
		}
		if detections[0].Section != "C2" {
			t.Errorf("got %q, want C2", detections[0].Section)
		}
	})
}

func TestCache_MissingKeyFallsBack(t *testing.T) {
	sections, detections := fixture()
	c := NewCache()
	var e Engine
	c.AssignAll(e, sections, detections)

	delete(c.entries, cacheKey{box: detections[1].BBox, page: detections[1].Page})
	detections[1].Section = "Garbage"
	detections[1].Color = nil

	stats := c.AssignAll(e, sections, detections)
	if stats.Served {
		t.Error("a missing key must not be served")
	}
	if !stats.Fallback {
		t.Error("expected Fallback to be reported")
	}
	if detections[1].Section != "B" || detections[1].Color == nil {
		t.Errorf("got section=%q color=%v, want B with color", detections[1].Section, detections[1].Color)
	}
	if c.Len() != 3 {
		t.Errorf("cache should be repopulated, got %d entries", c.Len())
	}
}

func TestCache_SeedKeepsStoredAssignments(t *testing.T) {
	sections, detections := fixture()
	// Stored by hand: geometry would leave this one Unassigned
	col := model.PaletteColor(0)
	detections[2].Section = "A"
	detections[2].Color = &col

	c := NewCache()
	c.Seed(sections, detections)
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	var e Engine
	stats := c.AssignAll(e, sections, detections)
	if !stats.Served {
		t.Fatal("seeded cache with matching fingerprints should be served")
	}
	if detections[2].Section != "A" || detections[2].Color == nil || *detections[2].Color != col {
		t.Errorf("stored assignment lost: %q %v", detections[2].Section, detections[2].Color)
	}

	c.Invalidate()
	c.AssignAll(e, sections, detections)
	if detections[2].Section != model.Unassigned {
		t.Errorf("after invalidate got %q, want geometric result", detections[2].Section)
	}
}

func TestCache_RecordOverridesEntry(t *testing.T) {
	sections, detections := fixture()
	c := NewCache()
	var e Engine
	c.AssignAll(e, sections, detections)

	col := model.PaletteColor(1)
	detections[0].Section = "B"
	detections[0].Color = &col
	c.Record(detections[0])

	if stats := c.AssignAll(e, sections, detections); !stats.Served {
		t.Fatal("recording an entry must not force a recompute")
	}
	if detections[0].Section != "B" {
		t.Errorf("replay undid the recorded edit, got %q", detections[0].Section)
	}
}

func TestCache_ZeroValueAndEmpty(t *testing.T) {
	var c Cache
	var e Engine
	sections, _ := fixture()

	stats := c.AssignAll(e, sections, nil)
	if stats.Served || stats.Detections != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	// An empty cache is never replayed
	if stats := c.AssignAll(e, sections, nil); stats.Served {
		t.Error("empty cache must not be served")
	}
}

func TestFingerprints(t *testing.T) {
	a := newSection("A", 0, 1, pts(0, 0, 1, 1))
	b := newSection("B", 1, 1, pts(0, 0, 1, 1))

	if SectionsFingerprint([]*model.Section{a, b}) == SectionsFingerprint([]*model.Section{b, a}) {
		t.Error("section order must affect the fingerprint")
	}
	before := SectionsFingerprint([]*model.Section{a})
	a.AddPolyline(pts(5, 5, 6, 6), 1)
	if SectionsFingerprint([]*model.Section{a}) == before {
		t.Error("polyline count must affect the fingerprint")
	}

	d1 := model.NewDetection("X", 1, model.BBox{X1: 0, Y1: 0, X2: 1, Y2: 1}, 1, model.SourceManual)
	d2 := d1.Clone()
	if DetectionsFingerprint([]*model.Detection{d1}) != DetectionsFingerprint([]*model.Detection{d2}) {
		t.Error("identical geometry must produce identical fingerprints")
	}
	d2.Page = 2
	if DetectionsFingerprint([]*model.Detection{d1}) == DetectionsFingerprint([]*model.Detection{d2}) {
		t.Error("page must affect the fingerprint")
	}
	d2.Page = 1
	d2.Name = "Other"
	if DetectionsFingerprint([]*model.Detection{d1}) != DetectionsFingerprint([]*model.Detection{d2}) {
		t.Error("category must not affect the fingerprint")
	}
}
