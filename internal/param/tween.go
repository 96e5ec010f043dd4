package param

import (
	"math"

	"github.com/ivlev/picturebox/internal/interp"
)

// phaseRank orders phases as they occur on stage: enter, act 1..n, leave.
func phaseRank(phase int) int {
	if phase < 0 {
		return math.MaxInt
	}
	return phase
}

// Tween eases from `from` to `to` during `phase`. Earlier phases hold `from`,
// later phases hold `to`. A nil easing is linear.
func Tween(from, to float64, phase int, easing func(float64) float64) Value[float64] {
	if easing == nil {
		easing = func(x float64) float64 { return x }
	}
	target := phaseRank(phase)
	return Dynamic(func(p int, tt float64) float64 {
		switch r := phaseRank(p); {
		case r < target:
			return from
		case r > target:
			return to
		}
		return interp.Linterp(0, from, 1, to, easing(tt))
	})
}

// ByPhase picks a constant per phase, falling back to def.
func ByPhase[T any](values map[int]T, def T) Value[T] {
	m := make(map[int]T, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Dynamic(func(p int, _ float64) T {
		if v, ok := m[p]; ok {
			return v
		}
		return def
	})
}
