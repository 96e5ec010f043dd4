// Package canvas is the drawing surface actors paint on.
package canvas

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Canvas is the set of primitives an actor may issue. Coordinates are in
// user space and pass through the active transform, if any.
type Canvas interface {
	Stroke(xs, ys []float64, st Style)
	FillPolygon(xs, ys []float64, st Style)
	BlitImage(x0, y0, x1, y1 float64, img image.Image, st Style)
	DrawText(x, y float64, s string, st Style)
	Line(x0, y0, x1, y1 float64, st Style)
	Rectangle(x0, y0, x1, y1 float64, fill bool, st Style)

	Clear()
	Update() error
	ExportRaster(path string) error
}

// Transformer is the optional coordinate-transform stack of a Canvas.
type Transformer interface {
	Push()
	Pop()
	Translate(dx, dy float64)
	Scale(sx, sy float64)
	Rotate(radians float64)
	Reset()
	Center()
}

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// ParseAlign accepts "left", "center"/"centre" and "right".
func ParseAlign(s string) (Align, error) {
	switch s {
	case "", "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}

// Style carries the drawing attributes of one primitive.
type Style struct {
	Color     color.Color
	Alpha     float64 // opacity multiplier in [0,1]
	LineWidth float64 // pixels
	FontSize  float64 // points at 72 DPI
	Align     Align
}

// DefaultStyle is opaque black, 1.5px lines and 14pt text.
func DefaultStyle() Style {
	return Style{
		Color:     color.Black,
		Alpha:     1,
		LineWidth: 1.5,
		FontSize:  14,
	}
}

// WithAlpha returns a copy whose opacity is multiplied by a.
func (s Style) WithAlpha(a float64) Style {
	s.Alpha *= a
	return s
}

// WithColor returns a copy painted in c.
func (s Style) WithColor(c color.Color) Style {
	s.Color = c
	return s
}

// Paint returns the style color with its opacity folded in.
func (s Style) Paint() color.NRGBA {
	c := s.Color
	if c == nil {
		c = color.Black
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	a := s.Alpha
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	n.A = uint8(float64(n.A)*a + 0.5)
	return n
}

// ParseColor parses "#rrggbb" or "#rgb".
func ParseColor(s string) (color.Color, error) {
	if len(s) == 4 && s[0] == '#' {
		s = "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c.Clamped(), nil
}

// MustParseColor is ParseColor for package-level constants.
func MustParseColor(s string) color.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
