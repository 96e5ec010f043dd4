// Package actor implements independently-timed drawable entities.
//
// An actor's life goes through three stages. It enters the stage, acts for one
// or more phases and leaves. Each stage is driven by a local time running from
// 0 to 1, so an actor never sees real frame numbers. Concrete actors implement
// Behavior (the act stage) and optionally Enterer and Leaver; the entrance and
// exit default to a fade of the act stage. EnterOnly turns an Enterer into a
// Behavior for actors that are only interesting while they appear.
//
// Drawing happens in two passes: every actor with shadow=true, then every
// actor with shadow=false, so all shadows sit under all actors.
package actor

import (
	"errors"
	"fmt"

	"github.com/ivlev/picturebox/internal/canvas"
	"github.com/ivlev/picturebox/internal/param"
	"github.com/ivlev/picturebox/internal/timeline"
)

// ErrNotImplemented is returned by stages a concrete actor did not supply.
var ErrNotImplemented = errors.New("stage not implemented")

// HasShadowParam is the parameter name reserved for the shadow flag.
const HasShadowParam = "has_shadow"

// Cue is one stage call.
type Cue struct {
	Canvas canvas.Canvas
	Phase  int
	T      float64
	Alpha  float64 // multiplies every opacity the stage draws with
	Shadow bool
	Params param.Snapshot
}

// Behavior is the act stage. Phase is 0 when called from the default entrance,
// -1 from the default exit, 1..N-3 otherwise.
type Behavior interface {
	Act(cue Cue) error
}

// Enterer overrides the default fade-in.
type Enterer interface {
	Enter(cue Cue) error
}

// Leaver overrides the default fade-out.
type Leaver interface {
	Leave(cue Cue) error
}

// Unimplemented can be embedded by actors whose act stage is not written
// yet; acting fails with ErrNotImplemented.
type Unimplemented struct{}

func (Unimplemented) Act(Cue) error { return fmt.Errorf("act: %w", ErrNotImplemented) }

type enterOnly struct {
	Enterer
}

// EnterOnly makes a Behavior whose act stage holds the fully-entered state.
func EnterOnly(e Enterer) Behavior {
	return enterOnly{e}
}

func (e enterOnly) Act(cue Cue) error {
	cue.T = 1
	return e.Enter(cue)
}

// Enter runs the enter stage of b: its own Enter if it has one, otherwise
// the act stage at phase 0, t 0, faded in by cue.T.
func Enter(b Behavior, cue Cue) error {
	if e, ok := b.(Enterer); ok {
		return e.Enter(cue)
	}
	cue.Alpha *= cue.T
	cue.Phase, cue.T = timeline.Enter, 0
	if cue.Alpha == 0 {
		return nil
	}
	return b.Act(cue)
}

// Leave runs the leave stage of b: its own Leave if it has one, otherwise
// the act stage at phase -1, t 1, faded out by cue.T.
func Leave(b Behavior, cue Cue) error {
	if eo, ok := b.(enterOnly); ok {
		if l, ok := eo.Enterer.(Leaver); ok {
			return l.Leave(cue)
		}
	}
	if l, ok := b.(Leaver); ok {
		return l.Leave(cue)
	}
	cue.Alpha *= 1 - cue.T
	cue.Phase, cue.T = timeline.Leave, 1
	if cue.Alpha == 0 {
		return nil
	}
	return b.Act(cue)
}

// Actor binds a Behavior to a timeline and a parameter set.
type Actor struct {
	name      string
	timeline  *timeline.Timeline
	behavior  Behavior
	params    *param.Set
	hasShadow param.Value[bool]
}

type Option func(*Actor)

// WithParams sets the construction arguments passed to every stage.
func WithParams(args param.Args) Option {
	return func(a *Actor) { a.params = param.NewSet(args) }
}

// WithShadow sets whether the actor draws in the shadow pass. The default is
// true.
func WithShadow(v param.Value[bool]) Option {
	return func(a *Actor) { a.hasShadow = v }
}

// New validates ts and builds an actor.
func New(name string, ts []float64, b Behavior, opts ...Option) (*Actor, error) {
	if b == nil {
		return nil, fmt.Errorf("actor %q: nil behavior", name)
	}
	tl, err := timeline.New(ts)
	if err != nil {
		return nil, fmt.Errorf("actor %q: %w", name, err)
	}
	a := &Actor{
		name:      name,
		timeline:  tl,
		behavior:  b,
		params:    param.NewSet(nil),
		hasShadow: param.Static(true),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Actor) Name() string                 { return a.name }
func (a *Actor) Timeline() *timeline.Timeline { return a.timeline }

// Draw paints the actor for frame. Frames outside the timeline draw nothing.
// In the shadow pass the has-shadow flag is resolved first and a false value
// makes the call a no-op.
func (a *Actor) Draw(c canvas.Canvas, frame int, shadow bool) error {
	pos, err := a.timeline.Locate(float64(frame))
	if errors.Is(err, timeline.ErrOutOfRange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("actor %q frame %d: %w", a.name, frame, err)
	}
	if shadow {
		has, err := a.hasShadow.Resolve(pos.Phase, pos.T)
		if err != nil {
			return fmt.Errorf("actor %q frame %d: %s: %w", a.name, frame, HasShadowParam, err)
		}
		if !has {
			return nil
		}
	}
	snap, err := a.params.Resolve(pos.Phase, pos.T)
	if err != nil {
		return fmt.Errorf("actor %q frame %d: %w", a.name, frame, err)
	}
	cue := Cue{
		Canvas: c,
		Phase:  pos.Phase,
		T:      pos.T,
		Alpha:  1,
		Shadow: shadow,
		Params: snap,
	}
	switch pos.Stage() {
	case timeline.StageEnter:
		err = Enter(a.behavior, cue)
	case timeline.StageLeave:
		err = Leave(a.behavior, cue)
	default:
		err = a.behavior.Act(cue)
	}
	if err != nil {
		return fmt.Errorf("actor %q frame %d phase %d: %w", a.name, frame, pos.Phase, err)
	}
	return nil
}
