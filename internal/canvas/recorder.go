package canvas

import (
	"fmt"
	"image"
	"strings"
	"sync"
)

// Call is one recorded canvas operation.
type Call struct {
	Op    string
	Args  []float64
	Text  string
	Style Style
}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprintf("%g", a)
	}
	s := c.Op + "(" + strings.Join(parts, ",") + ")"
	if c.Text != "" {
		s += " " + c.Text
	}
	return s
}

// Primitive reports whether the call draws something.
func (c Call) Primitive() bool {
	switch c.Op {
	case "stroke", "fill", "blit", "text", "line", "rectangle":
		return true
	}
	return false
}

// Recorder is a Canvas that draws nothing and remembers every call.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

// Calls returns a copy of everything recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Primitives returns only drawing calls.
func (r *Recorder) Primitives() []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Primitive() {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Exports lists exported paths in order.
func (r *Recorder) Exports() []string {
	var out []string
	for _, c := range r.Calls() {
		if c.Op == "export" {
			out = append(out, c.Text)
		}
	}
	return out
}

// Forget drops all recorded calls.
func (r *Recorder) Forget() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func pairs(xs, ys []float64) []float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	out := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, xs[i], ys[i])
	}
	return out
}

func (r *Recorder) Stroke(xs, ys []float64, st Style) {
	r.record(Call{Op: "stroke", Args: pairs(xs, ys), Style: st})
}

func (r *Recorder) FillPolygon(xs, ys []float64, st Style) {
	r.record(Call{Op: "fill", Args: pairs(xs, ys), Style: st})
}

func (r *Recorder) BlitImage(x0, y0, x1, y1 float64, img image.Image, st Style) {
	b := img.Bounds()
	r.record(Call{Op: "blit", Args: []float64{x0, y0, x1, y1}, Text: fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), Style: st})
}

func (r *Recorder) DrawText(x, y float64, s string, st Style) {
	r.record(Call{Op: "text", Args: []float64{x, y}, Text: s, Style: st})
}

func (r *Recorder) Line(x0, y0, x1, y1 float64, st Style) {
	r.record(Call{Op: "line", Args: []float64{x0, y0, x1, y1}, Style: st})
}

func (r *Recorder) Rectangle(x0, y0, x1, y1 float64, fill bool, st Style) {
	text := ""
	if fill {
		text = "filled"
	}
	r.record(Call{Op: "rectangle", Args: []float64{x0, y0, x1, y1}, Text: text, Style: st})
}

func (r *Recorder) Clear()        { r.record(Call{Op: "clear"}) }
func (r *Recorder) Update() error { r.record(Call{Op: "update"}); return nil }

func (r *Recorder) ExportRaster(path string) error {
	r.record(Call{Op: "export", Text: path})
	return nil
}

func (r *Recorder) Push()                    { r.record(Call{Op: "push"}) }
func (r *Recorder) Pop()                     { r.record(Call{Op: "pop"}) }
func (r *Recorder) Translate(dx, dy float64) { r.record(Call{Op: "translate", Args: []float64{dx, dy}}) }
func (r *Recorder) Scale(sx, sy float64)     { r.record(Call{Op: "scale", Args: []float64{sx, sy}}) }
func (r *Recorder) Rotate(radians float64)   { r.record(Call{Op: "rotate", Args: []float64{radians}}) }
func (r *Recorder) Reset()                   { r.record(Call{Op: "reset"}) }
func (r *Recorder) Center()                  { r.record(Call{Op: "center"}) }
