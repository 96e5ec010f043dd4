package cast

import (
	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/interp"
)

// Axis draws a pair of axes in: the vertical axis grows from the corner
// (x0,y1) to (x0,y0) during the first two thirds of the entrance, the
// horizontal one from (x0,y1) to (x1,y1) during the last two thirds.
type Axis struct{}

func NewAxis() actor.Behavior { return actor.EnterOnly(Axis{}) }

func (Axis) Enter(cue actor.Cue) error {
	v, err := floats(cue.Params, "x0", "y0", "x1", "y1")
	if err != nil {
		return err
	}
	x0, y0, x1, y1 := v[0], v[1], v[2], v[3]
	st, err := styleOf(cue)
	if err != nil {
		return err
	}
	if st.Alpha == 0 {
		return nil
	}
	ox, oy, st := shadowed(cue, st)
	tt := cue.T

	top := y0
	if tt < 2.0/3 {
		top = interp.Linterp(0, y1, 2.0/3, y0, tt)
	}
	cue.Canvas.Line(x0+ox, y1+oy, x0+ox, top+oy, st)
	if tt > 1.0/3 {
		cue.Canvas.Line(x0+ox, y1+oy, interp.Linterp(1.0/3, x0, 1, x1, tt)+ox, y1+oy, st)
	}
	return nil
}
