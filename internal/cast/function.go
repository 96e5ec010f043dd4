package cast

import (
	"fmt"
	"math"

	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/interp"
	"github.com/ivlev/picturebox/internal/param"
)

// Func1 is a curve y = f(x) in data coordinates.
type Func1 = func(float64) float64

// pixels samples [a, b) at one pixel steps in either direction.
func pixels(a, b float64) []float64 {
	if b >= a {
		return interp.Arange(a, b, 1)
	}
	out := interp.Arange(-a, -b, 1)
	for i := range out {
		out[i] = -out[i]
	}
	return out
}

// Function reveals the curve f left to right. The pixel box px0..px1,
// py0..py1 maps onto data x in dx0..dx1 and y in dy0..dy1. When dy0 or dy1
// is missing it is taken from the curve's extent over the whole box.
type Function struct{}

func NewFunction() actor.Behavior { return actor.EnterOnly(Function{}) }

func (Function) Enter(cue actor.Cue) error {
	v, err := floats(cue.Params, "px0", "dx0", "px1", "dx1", "py0", "py1")
	if err != nil {
		return err
	}
	px0, dx0, px1, dx1, py0, py1 := v[0], v[1], v[2], v[3], v[4], v[5]
	f, err := param.Get[Func1](cue.Params, "f")
	if err != nil {
		return err
	}
	st, err := styleOf(cue)
	if err != nil {
		return err
	}
	if st.Alpha == 0 {
		return nil
	}

	hasLo, hasHi := cue.Params.Has("dy0"), cue.Params.Has("dy1")
	var dy0, dy1 float64
	if !hasLo || !hasHi {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, x := range interp.LinterpSlice(px0, dx0, px1, dx1, pixels(px0, px1)) {
			y := f(x)
			lo, hi = math.Min(lo, y), math.Max(hi, y)
		}
		dy0, dy1 = lo, hi
	}
	if hasLo {
		if dy0, err = cue.Params.Float("dy0"); err != nil {
			return err
		}
	}
	if hasHi {
		if dy1, err = cue.Params.Float("dy1"); err != nil {
			return err
		}
	}
	if dy0 == dy1 || math.IsInf(dy0, 0) || math.IsInf(dy1, 0) {
		return fmt.Errorf("function: %w: dy0=%g dy1=%g", ErrDegenerate, dy0, dy1)
	}

	end := interp.Linterp(0, px0, 1, px1, cue.T)
	if end == px0 {
		return nil
	}
	px := append(pixels(px0, end), end)
	py := make([]float64, len(px))
	for i, x := range interp.LinterpSlice(px0, dx0, px1, dx1, px) {
		py[i] = interp.Linterp(dy0, py0, dy1, py1, f(x))
	}
	ox, oy, st := shadowed(cue, st)
	cue.Canvas.Stroke(offset(px, ox), offset(py, oy), st)
	return nil
}

// Plot draws a time-stamped polyline: point i appears once the plot clock,
// running from t0 to t1 over the entrance, reaches data_t[i].
type Plot struct{}

func NewPlot() actor.Behavior { return actor.EnterOnly(Plot{}) }

func (Plot) Enter(cue actor.Cue) error {
	v, err := floats(cue.Params, "px0", "dx0", "px1", "dx1", "py0", "dy0", "py1", "dy1", "t0", "t1")
	if err != nil {
		return err
	}
	px0, dx0, px1, dx1 := v[0], v[1], v[2], v[3]
	py0, dy0, py1, dy1 := v[4], v[5], v[6], v[7]
	t0, t1 := v[8], v[9]
	xs, err := cue.Params.Floats("data_x")
	if err != nil {
		return err
	}
	ys, err := cue.Params.Floats("data_y")
	if err != nil {
		return err
	}
	ts, err := cue.Params.Floats("data_t")
	if err != nil {
		return err
	}
	if len(xs) != len(ys) || len(xs) != len(ts) {
		return fmt.Errorf("plot: data_x, data_y and data_t lengths differ (%d, %d, %d)", len(xs), len(ys), len(ts))
	}
	st, err := styleOf(cue)
	if err != nil {
		return err
	}
	if st.Alpha == 0 {
		return nil
	}
	ox, oy, st := shadowed(cue, st)

	now := interp.Linterp(0, t0, 1, t1, cue.T)
	var lx, ly float64
	for i := range xs {
		if ts[i] > now {
			break
		}
		x := interp.Linterp(dx0, px0, dx1, px1, xs[i]) + ox
		y := interp.Linterp(dy0, py0, dy1, py1, ys[i]) + oy
		if i > 0 && ts[i] >= t0 {
			cue.Canvas.Line(lx, ly, x, y, st)
		}
		lx, ly = x, y
	}
	return nil
}
