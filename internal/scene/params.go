package scene

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/picturebox/internal/canvas"
	"github.com/ivlev/picturebox/internal/cast"
	"github.com/ivlev/picturebox/internal/interp"
	"github.com/ivlev/picturebox/internal/param"
	"github.com/ivlev/picturebox/internal/source"
	"github.com/ivlev/picturebox/internal/timeline"
)

// ParsePhase reads "enter", "leave" or an act phase number.
func ParsePhase(s string) (int, error) {
	switch s {
	case "enter":
		return timeline.Enter, nil
	case "leave":
		return timeline.Leave, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < timeline.Leave {
		return 0, fmt.Errorf("bad phase %q", s)
	}
	return n, nil
}

type tweenSpec struct {
	From  float64 `yaml:"from"`
	To    float64 `yaml:"to"`
	Phase string  `yaml:"phase"`
	Ease  string  `yaml:"ease"`
}

type funcSpec struct {
	Function  string   `yaml:"function"`
	Amplitude *float64 `yaml:"amplitude"`
	Frequency *float64 `yaml:"frequency"`
	Shift     float64  `yaml:"shift"`
	Offset    float64  `yaml:"offset"`
}

type pictureSpec struct {
	Image  string `yaml:"image"`
	PDF    string `yaml:"pdf"`
	Page   int    `yaml:"page"`
	DPI    int    `yaml:"dpi"`
	Trim   bool   `yaml:"trim"`
	Margin int    `yaml:"margin"`
	QRCode string `yaml:"qrcode"`
	Size   int    `yaml:"size"`
	Color  string `yaml:"color"`
	Paper  string `yaml:"background"`
}

// builder turns parameter nodes into resolver entries.
type builder struct {
	dir   string
	cache *source.Cache
}

func mappingKeys(n *yaml.Node) map[string]*yaml.Node {
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// value interprets one parameter. Plain scalars, lists and maps are static;
// mappings keyed tween, by_phase, function, image, pdf or qrcode are the
// special forms.
func (b *builder) value(kind, name string, n *yaml.Node) (any, error) {
	n = deref(n)
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && (name == "f" || name == "ffade") {
		return b.function(kind, funcSpec{Function: n.Value})
	}
	if n.Kind != yaml.MappingNode {
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}

	keys := mappingKeys(n)
	switch {
	case keys["tween"] != nil:
		var ts tweenSpec
		if err := keys["tween"].Decode(&ts); err != nil {
			return nil, err
		}
		return tween(ts)
	case keys["by_phase"] != nil:
		return byPhase[any](n, keys)
	case keys["function"] != nil:
		var fs funcSpec
		if err := n.Decode(&fs); err != nil {
			return nil, err
		}
		return b.function(kind, fs)
	case keys["image"] != nil, keys["pdf"] != nil, keys["qrcode"] != nil:
		var ps pictureSpec
		if err := n.Decode(&ps); err != nil {
			return nil, err
		}
		return b.picture(ps)
	}
	var v map[string]any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func tween(ts tweenSpec) (param.Value[float64], error) {
	phase := timeline.Enter
	if ts.Phase != "" {
		p, err := ParsePhase(ts.Phase)
		if err != nil {
			return param.Value[float64]{}, err
		}
		phase = p
	}
	ease, err := interp.Ease(ts.Ease)
	if err != nil {
		return param.Value[float64]{}, err
	}
	return param.Tween(ts.From, ts.To, phase, ease), nil
}

func byPhase[T any](n *yaml.Node, keys map[string]*yaml.Node) (param.Value[T], error) {
	var def T
	if d := keys["default"]; d != nil {
		if err := d.Decode(&def); err != nil {
			return param.Value[T]{}, err
		}
	}
	table := deref(keys["by_phase"])
	if table.Kind != yaml.MappingNode {
		return param.Value[T]{}, fmt.Errorf("line %d: by_phase wants a mapping", n.Line)
	}
	values := make(map[int]T, len(table.Content)/2)
	for i := 0; i+1 < len(table.Content); i += 2 {
		phase, err := ParsePhase(table.Content[i].Value)
		if err != nil {
			return param.Value[T]{}, fmt.Errorf("line %d: %w", table.Content[i].Line, err)
		}
		var v T
		if err := table.Content[i+1].Decode(&v); err != nil {
			return param.Value[T]{}, err
		}
		values[phase] = v
	}
	return param.ByPhase(values, def), nil
}

func (b *builder) function(kind string, fs funcSpec) (any, error) {
	amp, freq := 1.0, 1.0
	if fs.Amplitude != nil {
		amp = *fs.Amplitude
	}
	if fs.Frequency != nil {
		freq = *fs.Frequency
	}
	if kind == "field" {
		f, err := cast.LookupField(fs.Function)
		if err != nil {
			return nil, err
		}
		return cast.AffineField(f, amp, freq, fs.Shift, fs.Offset), nil
	}
	f, err := cast.LookupFunction(fs.Function)
	if err != nil {
		return nil, err
	}
	return cast.Affine(f, amp, freq, fs.Shift, fs.Offset), nil
}

func (b *builder) path(p string) string {
	if p == "" || filepath.IsAbs(p) || b.dir == "" {
		return p
	}
	return filepath.Join(b.dir, p)
}

func (b *builder) picture(ps pictureSpec) (image.Image, error) {
	if ps.QRCode != "" {
		fg, err := optionalColor(ps.Color)
		if err != nil {
			return nil, err
		}
		bg, err := optionalColor(ps.Paper)
		if err != nil {
			return nil, err
		}
		return b.cache.QRCode(ps.QRCode, ps.Size, fg, bg)
	}
	path := b.path(ps.Image)
	if ps.PDF != "" {
		path = b.path(ps.PDF)
	}
	if ps.Trim {
		return b.cache.TrimmedPage(path, ps.Page, ps.DPI, ps.Margin)
	}
	return b.cache.Page(path, ps.Page, ps.DPI)
}

func optionalColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	return canvas.ParseColor(s)
}

// shadow reads has_shadow: absent means true, a bool is static, by_phase
// varies it.
func (b *builder) shadow(n *yaml.Node) (param.Value[bool], error) {
	if n == nil {
		return param.Static(true), nil
	}
	n = deref(n)
	if n.Kind == yaml.MappingNode {
		if keys := mappingKeys(n); keys["by_phase"] != nil {
			return byPhase[bool](n, keys)
		}
		return param.Value[bool]{}, fmt.Errorf("line %d: has_shadow wants a bool or by_phase", n.Line)
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		return param.Value[bool]{}, err
	}
	return param.Static(v), nil
}
