package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/ironsheep/spectra-mcp/internal/geometry"
	"github.com/ironsheep/spectra-mcp/internal/model"
)

func sameColor(a color.Color, b color.NRGBA) bool {
	r, g, bl, al := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r == r2 && g == g2 && bl == b2 && al == a2
}

func overlayFixture() ([]*model.Section, []*model.Detection) {
	green := model.Color{R: 0, G: 255, B: 0}
	s := model.NewSection("Header", nil, green)
	s.AddPolyline([]geometry.Point{{X: 10, Y: 50}, {X: 90, Y: 50}}, 1)
	s.AddPolyline([]geometry.Point{{X: 50, Y: 10}, {X: 50, Y: 90}}, 2)

	owned := model.NewDetection("Flange", 1, model.BBox{X1: 40, Y1: 45, X2: 60, Y2: 55}, 1, model.SourceManual)
	owned.Section = "Header"
	owned.Color = &green
	free := model.NewDetection("Flange", 1, model.BBox{X1: 70, Y1: 70, X2: 90, Y2: 90}, 1, model.SourceManual)
	other := model.NewDetection("Flange", 1, model.BBox{X1: 5, Y1: 5, X2: 20, Y2: 20}, 2, model.SourceManual)
	return []*model.Section{s}, []*model.Detection{owned, free, other}
}

func TestRenderOverlay(t *testing.T) {
	src := createInMemoryImage(100, 100, color.White)
	sections, detections := overlayFixture()
	green := color.NRGBA{0, 255, 0, 255}

	out := RenderOverlay(src, 1, sections, detections, OverlayOptions{Thickness: 1})

	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"polyline on page 1", 20, 50, green},
		{"owned box edge", 40, 47, green},
		{"unassigned box edge", 70, 80, unassignedColor},
		{"page 2 polyline skipped", 50, 20, color.NRGBA{255, 255, 255, 255}},
		{"page 2 box skipped", 5, 10, color.NRGBA{255, 255, 255, 255}},
		{"untouched interior", 80, 30, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := out.At(tt.x, tt.y); !sameColor(got, tt.want) {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	if !sameColor(src.At(20, 50), color.NRGBA{255, 255, 255, 255}) {
		t.Error("source image was modified")
	}
}

func TestRenderOverlay_PageZeroDrawnEverywhere(t *testing.T) {
	src := createInMemoryImage(40, 40, color.White)
	d := model.NewDetection("Flange", 1, model.BBox{X1: 10, Y1: 10, X2: 30, Y2: 30}, 0, model.SourceModel)

	for _, page := range []int{1, 3} {
		out := RenderOverlay(src, page, nil, []*model.Detection{d}, OverlayOptions{Thickness: 2})
		if !sameColor(out.At(10, 20), unassignedColor) {
			t.Errorf("page %d: box with unknown page not drawn", page)
		}
	}
}

func TestRenderOverlay_Fade(t *testing.T) {
	src := createInMemoryImage(10, 10, color.RGBA{100, 100, 100, 255})
	out := RenderOverlay(src, 1, nil, nil, OverlayOptions{Fade: 0.5})

	r, _, _, _ := out.At(5, 5).RGBA()
	if r>>8 <= 100 {
		t.Errorf("faded pixel red = %d, want brighter than 100", r>>8)
	}
}

func TestRenderOverlay_ClipsOffPage(t *testing.T) {
	src := createInMemoryImage(20, 20, color.White)
	s := model.NewSection("Edge", nil, model.PaletteColor(0))
	s.AddPolyline([]geometry.Point{{X: -50, Y: -50}, {X: 70, Y: 70}}, 1)
	d := model.NewDetection("x", 1, model.BBox{X1: -10, Y1: -10, X2: 500, Y2: 500}, 1, model.SourceModel)

	// Must not panic on coordinates outside the image.
	out := RenderOverlay(src, 1, []*model.Section{s}, []*model.Detection{d}, DefaultOverlayOptions())
	if out.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Errorf("bounds = %v", out.Bounds())
	}
}

func TestEncodeAndSaveOverlay(t *testing.T) {
	src := createInMemoryImage(16, 12, color.White)
	out := RenderOverlay(src, 1, nil, nil, OverlayOptions{})

	res, err := EncodeOverlay(out, 1)
	if err != nil {
		t.Fatalf("EncodeOverlay failed: %v", err)
	}
	if res.Width != 16 || res.Height != 12 || res.ImageBase64 == "" {
		t.Errorf("result = %+v", res)
	}

	path := filepath.Join(t.TempDir(), "overlay.png")
	if err := SaveOverlay(path, out); err != nil {
		t.Fatalf("SaveOverlay failed: %v", err)
	}
	loaded, err := NewImageCache().Load(path)
	if err != nil {
		t.Fatalf("saved overlay unreadable: %v", err)
	}
	if loaded.Bounds().Dx() != 16 {
		t.Errorf("saved width = %d", loaded.Bounds().Dx())
	}
}
