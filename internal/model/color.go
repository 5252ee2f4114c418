package model

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// paletteSteps is the number of hues in the section rainbow before it repeats.
const paletteSteps = 12

// Color is an 8-bit RGB display color. It is persisted as a "#rrggbb" string.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// PaletteColor returns the i-th color of the 12-step rainbow used for new
// sections. Hues advance 30 degrees per step at full saturation and value, so
// index 0 is red, 4 is green and 8 is blue. Negative indices wrap.
func PaletteColor(i int) Color {
	step := i % paletteSteps
	if step < 0 {
		step += paletteSteps
	}
	r, g, b := colorful.Hsv(float64(step)*360/paletteSteps, 1, 1).RGB255()
	return Color{R: r, G: g, B: b}
}

// ParseColor parses a "#rrggbb" or "#rgb" hex string.
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex returns the color as a lowercase "#rrggbb" string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// NRGBA converts c to an opaque image/color value for drawing.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// MarshalJSON encodes the color as a hex string.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// UnmarshalJSON decodes a hex string.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("color must be a string: %w", err)
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
