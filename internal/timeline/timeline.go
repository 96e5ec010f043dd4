// Package timeline maps a global frame number onto an actor's life cycle.
//
// A breakpoint sequence ts of length N partitions the actor's life into N-1
// intervals:
//
//	ts[0]        ts[1]       ts[2]   ...   ts[N-2]       ts[N-1]
//	  |<--enter-->|<--act 1-->|     ...     |<--leave-->|
//
// Interval 0 is the entrance (phase 0), the last interval is the exit
// (phase -1) and everything in between keeps its index (phases 1..N-3).
// Frames are located in the half-open range [ts[0], ts[N-1]).
package timeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/picturebox/internal/interp"
)

const (
	Enter = 0
	Leave = -1

	// MinBreakpoints is the shortest valid sequence: enter, one act phase, leave.
	MinBreakpoints = 4
)

var (
	ErrTooFewBreakpoints = errors.New("timeline needs at least 4 breakpoints")
	ErrNotIncreasing     = errors.New("timeline breakpoints must be finite and strictly increasing")
	ErrOutOfRange        = errors.New("frame outside timeline")
	ErrInconsistent      = errors.New("timeline has no interval for an in-range frame")
)

// Stage is the life-cycle stage of a phase.
type Stage int

const (
	StageEnter Stage = iota
	StageAct
	StageLeave
)

func (s Stage) String() string {
	switch s {
	case StageEnter:
		return "enter"
	case StageAct:
		return "act"
	case StageLeave:
		return "leave"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Position is where a frame falls on a timeline.
type Position struct {
	Phase int
	T     float64 // local time in [0,1)
}

func (p Position) Stage() Stage {
	switch p.Phase {
	case Enter:
		return StageEnter
	case Leave:
		return StageLeave
	}
	return StageAct
}

// Timeline is a validated, immutable breakpoint sequence.
type Timeline struct {
	ts []float64
}

// New validates ts and copies it.
func New(ts []float64) (*Timeline, error) {
	if err := Validate(ts); err != nil {
		return nil, err
	}
	cp := make([]float64, len(ts))
	copy(cp, ts)
	return &Timeline{ts: cp}, nil
}

// FromFrames builds a Timeline from integer frame numbers.
func FromFrames(frames ...int) (*Timeline, error) {
	ts := make([]float64, len(frames))
	for i, f := range frames {
		ts[i] = float64(f)
	}
	return New(ts)
}

// Validate checks the breakpoint invariants.
func Validate(ts []float64) error {
	if len(ts) < MinBreakpoints {
		return fmt.Errorf("%w: got %d", ErrTooFewBreakpoints, len(ts))
	}
	for i, t := range ts {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: ts[%d]=%v", ErrNotIncreasing, i, t)
		}
		if i > 0 && t <= ts[i-1] {
			return fmt.Errorf("%w: ts[%d]=%v after ts[%d]=%v", ErrNotIncreasing, i, t, i-1, ts[i-1])
		}
	}
	return nil
}

// Locate finds the phase and local time of frame on ts. ts is not validated;
// use a Timeline for that.
func Locate(ts []float64, frame float64) (Position, error) {
	n := len(ts)
	if n < 2 || frame < ts[0] || frame >= ts[n-1] {
		return Position{}, ErrOutOfRange
	}
	for i := 0; i < n-1; i++ {
		if frame < ts[i+1] {
			phase := i
			if i == n-2 {
				phase = Leave
			}
			// rounding in Linterp can reach 1 on very wide intervals
			t := math.Min(interp.Linterp(ts[i], 0, ts[i+1], 1, frame), math.Nextafter(1, 0))
			return Position{Phase: phase, T: t}, nil
		}
	}
	return Position{}, fmt.Errorf("%w: frame %v in %v", ErrInconsistent, frame, ts)
}

func (tl *Timeline) Locate(frame float64) (Position, error) {
	return Locate(tl.ts, frame)
}

// Start is the first frame on stage.
func (tl *Timeline) Start() float64 { return tl.ts[0] }

// End is the first frame after the actor left.
func (tl *Timeline) End() float64 { return tl.ts[len(tl.ts)-1] }

// Intervals is the number of phases, enter and leave included.
func (tl *Timeline) Intervals() int { return len(tl.ts) - 1 }

// ActPhases is the number of interior act phases.
func (tl *Timeline) ActPhases() int { return len(tl.ts) - 3 }

// Phases lists every phase in stage order.
func (tl *Timeline) Phases() []int {
	out := make([]int, 0, tl.Intervals())
	out = append(out, Enter)
	for i := 1; i <= tl.ActPhases(); i++ {
		out = append(out, i)
	}
	return append(out, Leave)
}

// Breakpoints returns a copy of the sequence.
func (tl *Timeline) Breakpoints() []float64 {
	cp := make([]float64, len(tl.ts))
	copy(cp, tl.ts)
	return cp
}
