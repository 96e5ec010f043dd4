package cast

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/canvas"
	"github.com/ivlev/picturebox/internal/interp"
	"github.com/ivlev/picturebox/internal/param"
)

// Func2 is a scalar field z = f(x, y).
type Func2 = func(x, y float64) float64

var (
	defaultLow  = canvas.MustParseColor("#000080")
	defaultHigh = canvas.MustParseColor("#ffff00")
)

// Field paints f sampled on an nx by ny grid as a color image stretched over
// the pixel box. During the entrance a soft front sweeps across the grid in
// the order given by ffade (values in [0,1], left to right by default).
type Field struct{}

func NewField() actor.Behavior { return Field{} }

type fieldMap struct {
	px0, py0, px1, py1 float64
	nx, ny             int
	norm               []float64 // f normalized to [0,1], row-major
	order              []float64 // ffade, row-major
	low, high          colorful.Color
}

func grid(n int, a, b float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if n == 1 {
			out[i] = a
			continue
		}
		out[i] = interp.Linterp(0, a, float64(n-1), b, float64(i))
	}
	return out
}

func colorParam(p param.Snapshot, name string, def color.Color) (colorful.Color, error) {
	c := def
	if v, ok := p.Lookup(name); ok {
		switch x := v.(type) {
		case color.Color:
			c = x
		case string:
			parsed, err := canvas.ParseColor(x)
			if err != nil {
				return colorful.Color{}, err
			}
			c = parsed
		default:
			return colorful.Color{}, fmt.Errorf("%w: %q is %T, want color", param.ErrType, name, v)
		}
	}
	cf, _ := colorful.MakeColor(c)
	return cf, nil
}

func sampleField(p param.Snapshot) (*fieldMap, error) {
	v, err := floats(p, "px0", "py0", "px1", "py1", "dx0", "dx1", "dy0", "dy1")
	if err != nil {
		return nil, err
	}
	m := &fieldMap{px0: v[0], py0: v[1], px1: v[2], py1: v[3]}
	if m.nx, err = p.Int("nx"); err != nil {
		return nil, err
	}
	if m.ny, err = p.Int("ny"); err != nil {
		return nil, err
	}
	if m.nx < 1 || m.ny < 1 {
		return nil, fmt.Errorf("field: grid %dx%d is empty", m.nx, m.ny)
	}
	f, err := param.Get[Func2](p, "f")
	if err != nil {
		return nil, err
	}
	fade, err := param.GetOr[Func2](p, "ffade", nil)
	if err != nil {
		return nil, err
	}
	if fade == nil {
		dx0, dx1 := v[4], v[5]
		fade = func(x, _ float64) float64 { return (x - dx0) / (dx1 - dx0) }
	}
	if m.low, err = colorParam(p, "low", defaultLow); err != nil {
		return nil, err
	}
	if m.high, err = colorParam(p, "high", defaultHigh); err != nil {
		return nil, err
	}

	xs, ys := grid(m.nx, v[4], v[5]), grid(m.ny, v[6], v[7])
	raw := make([]float64, 0, m.nx*m.ny)
	m.order = make([]float64, 0, m.nx*m.ny)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		for _, x := range xs {
			z := f(x, y)
			raw = append(raw, z)
			lo, hi = math.Min(lo, z), math.Max(hi, z)
			m.order = append(m.order, interp.Clamp01(fade(x, y)))
		}
	}
	if lo, err = p.FloatOr("vmin", lo); err != nil {
		return nil, err
	}
	if hi, err = p.FloatOr("vmax", hi); err != nil {
		return nil, err
	}
	m.norm = raw
	for i, z := range raw {
		if hi == lo {
			m.norm[i] = 0.5
			continue
		}
		m.norm[i] = interp.Clamp01((z - lo) / (hi - lo))
	}
	return m, nil
}

// image bakes the colormap with a per-cell opacity.
func (m *fieldMap) image(opacity func(i int) float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.nx, m.ny))
	for i, z := range m.norm {
		r, g, b := m.low.BlendLab(m.high, z).Clamped().RGB255()
		a := opacity(i)
		img.Pix[4*i+0] = r
		img.Pix[4*i+1] = g
		img.Pix[4*i+2] = b
		img.Pix[4*i+3] = uint8(math.Round(255 * a))
	}
	return img
}

func (m *fieldMap) blit(c canvas.Canvas, img image.Image, alpha float64) {
	st := canvas.DefaultStyle().WithAlpha(alpha)
	c.BlitImage(m.px0, m.py0, m.px1, m.py1, img, st)
}

// Enter sweeps the field in: a cell whose ffade is below the front is
// fully shown, above it hidden, with a smoothstep band in between.
func (Field) Enter(cue actor.Cue) error {
	if cue.Shadow || cue.Alpha == 0 {
		return nil
	}
	a, err := cue.Params.FloatOr("alpha", 1)
	if err != nil {
		return err
	}
	alpha := a * cue.Alpha
	if alpha == 0 {
		return nil
	}
	m, err := sampleField(cue.Params)
	if err != nil {
		return fmt.Errorf("field: %w", err)
	}
	top := interp.Linterp(0, 0, 0.8, 1, cue.T)
	bot := interp.Linterp(0.2, 0, 1, 1, cue.T)
	img := m.image(func(i int) float64 {
		fade := interp.Linterp(bot, 1, top, 0, m.order[i])
		return interp.Smoothstep(interp.Clamp01(fade))
	})
	m.blit(cue.Canvas, img, alpha)
	return nil
}

func (Field) Act(cue actor.Cue) error {
	if cue.Shadow {
		return nil
	}
	a, err := cue.Params.FloatOr("alpha", 1)
	if err != nil {
		return err
	}
	alpha := a * cue.Alpha
	if alpha == 0 {
		return nil
	}
	m, err := sampleField(cue.Params)
	if err != nil {
		return fmt.Errorf("field: %w", err)
	}
	m.blit(cue.Canvas, m.image(func(int) float64 { return 1 }), alpha)
	return nil
}
