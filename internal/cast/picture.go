package cast

import (
	"image"

	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/param"
)

// Picture shows an image stretched over (x0,y0)-(x1,y1). Its shadow is a
// filled rectangle; the image itself is never recolored.
type Picture struct{}

func NewPicture() actor.Behavior { return Picture{} }

func (Picture) Act(cue actor.Cue) error {
	v, err := floats(cue.Params, "x0", "y0", "x1", "y1")
	if err != nil {
		return err
	}
	img, err := param.Get[image.Image](cue.Params, "image")
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
	if cue.Shadow {
		ox, oy, st := shadowed(cue, st)
		cue.Canvas.Rectangle(v[0]+ox, v[1]+oy, v[2]+ox, v[3]+oy, true, st)
		return nil
	}
	cue.Canvas.BlitImage(v[0], v[1], v[2], v[3], img, st)
	if border, _ := param.GetOr(cue.Params, "border", false); border {
		cue.Canvas.Rectangle(v[0], v[1], v[2], v[3], false, st)
	}
	return nil
}
