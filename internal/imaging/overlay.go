package imaging

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/spectra-mcp/internal/geometry"
	"github.com/ironsheep/spectra-mcp/internal/model"
)

// unassignedColor outlines detections no section owns.
var unassignedColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// OverlayOptions controls RenderOverlay.
type OverlayOptions struct {
	// Thickness is the stroke width in pixels for polylines and boxes.
	Thickness int

	// Fade lightens the page before drawing, in [0,1]. Zero keeps the page as is.
	Fade float64

	// Labels draws each detection's index above its box.
	Labels bool
}

// DefaultOverlayOptions returns a 3 pixel stroke, a light fade and labels.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{Thickness: 3, Fade: 0.3, Labels: true}
}

// RenderOverlay draws every section polyline on page and every detection box
// on page in its display color. Detections with page 0 are drawn on every
// page. The source image is not modified.
func RenderOverlay(img image.Image, page int, sections []*model.Section, detections []*model.Detection, opts OverlayOptions) *image.NRGBA {
	var base image.Image = img
	if opts.Fade > 0 {
		base = adjust.Brightness(img, min(opts.Fade, 1))
	}
	out := imaging.Clone(base)

	thickness := max(opts.Thickness, 1)

	for _, s := range sections {
		c := s.Color.NRGBA()
		for _, pl := range s.Polylines {
			if pl.Page != page {
				continue
			}
			for i := 1; i < len(pl.Points); i++ {
				drawLine(out, pl.Points[i-1], pl.Points[i], thickness, c)
			}
		}
	}

	for i, d := range detections {
		if d.Page != page && d.Page != 0 {
			continue
		}
		c := unassignedColor
		if d.Color != nil {
			c = d.Color.NRGBA()
		}
		drawBox(out, d.BBox, thickness, c)
		if opts.Labels {
			drawLabel(out, d.BBox.X1, d.BBox.Y1-9, strconv.Itoa(i), color.NRGBA{255, 255, 255, 255}, c)
		}
	}
	return out
}

// OverlayResult is a rendered overlay encoded for transport.
type OverlayResult struct {
	Page        int    `json:"page"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	Path        string `json:"path,omitempty"`
}

// EncodeOverlay returns the overlay as a base64 PNG.
func EncodeOverlay(img image.Image, page int) (*OverlayResult, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &OverlayResult{
		Page:        page,
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

// SaveOverlay writes img to path as PNG.
func SaveOverlay(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save overlay %s: %w", path, err)
	}
	return nil
}

// drawLine rasterizes a segment with Bresenham's algorithm, stamping a
// square brush of the given width at every step.
func drawLine(img *image.NRGBA, a, b geometry.Point, width int, c color.NRGBA) {
	x0, y0 := int(a.X+0.5), int(a.Y+0.5)
	x1, y1 := int(b.X+0.5), int(b.Y+0.5)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		stamp(img, x0, y0, width, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// drawBox outlines a detection box inward from its edges.
func drawBox(img *image.NRGBA, box model.BBox, width int, c color.NRGBA) {
	r := image.Rect(box.X1, box.Y1, box.X2, box.Y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for w := 0; w < width; w++ {
		for x := box.X1; x < box.X2; x++ {
			setClipped(img, x, box.Y1+w, c)
			setClipped(img, x, box.Y2-1-w, c)
		}
		for y := box.Y1; y < box.Y2; y++ {
			setClipped(img, box.X1+w, y, c)
			setClipped(img, box.X2-1-w, y, c)
		}
	}
}

func stamp(img *image.NRGBA, cx, cy, width int, c color.NRGBA) {
	half := width / 2
	for y := cy - half; y < cy-half+width; y++ {
		for x := cx - half; x < cx-half+width; x++ {
			setClipped(img, x, y, c)
		}
	}
}

func setClipped(img *image.NRGBA, x, y int, c color.NRGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetNRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawLabel draws digits with a 3x5 pixel font on a filled background.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	const charWidth = 4
	const labelHeight = 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < len(text)*charWidth; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					setClipped(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
