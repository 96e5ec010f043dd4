package cast

import (
	"fmt"

	"github.com/ivlev/picturebox/internal/actor"
)

// Text fades a string in at (x,y).
type Text struct{}

func NewText() actor.Behavior { return actor.EnterOnly(Text{}) }

func (Text) Enter(cue actor.Cue) error {
	v, err := floats(cue.Params, "x", "y")
	if err != nil {
		return err
	}
	raw, ok := cue.Params.Lookup("s")
	if !ok {
		return fmt.Errorf("text: %w", errMissing("s"))
	}
	st, err := styleOf(cue)
	if err != nil {
		return err
	}
	st = st.WithAlpha(cue.T)
	if st.Alpha == 0 {
		return nil
	}
	ox, oy, st := shadowed(cue, st)
	cue.Canvas.DrawText(v[0]+ox, v[1]+oy, format(raw), st)
	return nil
}
