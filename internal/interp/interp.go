package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FPS is the fixed frame rate used by timecodes.
const FPS = 24

// Linterp maps x from the segment [x0, x1] onto [y0, y1].
// The endpoints are returned exactly. x1 must differ from x0; otherwise the
// result is Inf or NaN.
func Linterp(x0, y0, x1, y1, x float64) float64 {
	if x == x0 {
		return y0
	}
	if x == x1 {
		return y1
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// LinterpSlice applies Linterp to every element of xs.
func LinterpSlice(x0, y0, x1, y1 float64, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = Linterp(x0, y0, x1, y1, x)
	}
	return out
}

// Smoothstep is the cubic ease -2x^3 + 3x^2.
func Smoothstep(x float64) float64 {
	return x * x * (3 - 2*x)
}

// Clamp01 clamps x in [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Arange returns start, start+step, ... up to but excluding stop.
func Arange(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return nil
	}
	n := int(math.Ceil((stop - start) / step))
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start+float64(i)*step)
	}
	return out
}

// Timecode converts minutes, seconds and frames into a frame number.
func Timecode(min, sec, frame int) int {
	return (min*60+sec)*FPS + frame
}

// ParseTimecode parses "m:s:f", "s:f" or a bare frame count.
func ParseTimecode(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timecode %q", s)
	}
	nums := make([]int, 3)
	offset := 3 - len(parts)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", s, err)
		}
		nums[offset+i] = n
	}
	return Timecode(nums[0], nums[1], nums[2]), nil
}
