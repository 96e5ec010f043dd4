// Package cast holds the concrete actor kinds: axes, text, tables, plots,
// fields and pictures.
package cast

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/canvas"
	"github.com/ivlev/picturebox/internal/param"
)

// Drop shadow convention.
const ShadowOffset = 5.0

var ShadowColor = canvas.MustParseColor("#a0a0c0")

var ErrDegenerate = errors.New("degenerate data range")

var kinds = map[string]func() actor.Behavior{
	"axis":         func() actor.Behavior { return NewAxis() },
	"text":         func() actor.Behavior { return NewText() },
	"table_column": func() actor.Behavior { return NewTableColumn() },
	"table_grid":   func() actor.Behavior { return NewTableGrid() },
	"function":     func() actor.Behavior { return NewFunction() },
	"plot":         func() actor.Behavior { return NewPlot() },
	"field":        func() actor.Behavior { return NewField() },
	"picture":      func() actor.Behavior { return NewPicture() },
}

// New returns the behavior registered for kind.
func New(kind string) (actor.Behavior, error) {
	mk, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown actor kind %q (known: %v)", kind, Kinds())
	}
	return mk(), nil
}

// Kinds lists the registered kind names.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// styleOf builds the drawing style from the common parameters and folds in
// the cue's alpha.
func styleOf(cue actor.Cue) (canvas.Style, error) {
	st := canvas.DefaultStyle()
	p := cue.Params
	if v, ok := p.Lookup("color"); ok {
		switch c := v.(type) {
		case color.Color:
			st.Color = c
		case string:
			parsed, err := canvas.ParseColor(c)
			if err != nil {
				return st, err
			}
			st.Color = parsed
		default:
			return st, fmt.Errorf("%w: %q is %T, want color", param.ErrType, "color", v)
		}
	}
	a, err := p.FloatOr("alpha", 1)
	if err != nil {
		return st, err
	}
	if st.LineWidth, err = p.FloatOr("linewidth", st.LineWidth); err != nil {
		return st, err
	}
	if st.FontSize, err = p.FloatOr("fontsize", st.FontSize); err != nil {
		return st, err
	}
	align, err := p.StringOr("align", "left")
	if err != nil {
		return st, err
	}
	if st.Align, err = canvas.ParseAlign(align); err != nil {
		return st, err
	}
	st.Alpha = a * cue.Alpha
	return st, nil
}

// shadowed applies the drop-shadow offset and color in the shadow pass.
func shadowed(cue actor.Cue, st canvas.Style) (dx, dy float64, out canvas.Style) {
	if !cue.Shadow {
		return 0, 0, st
	}
	return ShadowOffset, ShadowOffset, st.WithColor(ShadowColor)
}

// floats fetches several required numbers at once.
func floats(p param.Snapshot, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, n := range names {
		v, err := p.Float(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func offset(vs []float64, d float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v + d
	}
	return out
}
