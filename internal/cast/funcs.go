package cast

import (
	"fmt"
	"math"
	"sort"
)

// Functions are the curves a scene file can name for Function actors.
var Functions = map[string]Func1{
	"identity": func(x float64) float64 { return x },
	"square":   func(x float64) float64 { return x * x },
	"cube":     func(x float64) float64 { return x * x * x },
	"sqrt":     math.Sqrt,
	"exp":      math.Exp,
	"log":      math.Log,
	"sin":      math.Sin,
	"cos":      math.Cos,
	"tanh":     math.Tanh,
	"gauss":    func(x float64) float64 { return math.Exp(-x * x) },
	"sinc": func(x float64) float64 {
		if x == 0 {
			return 1
		}
		return math.Sin(x) / x
	},
}

// Fields are the scalar fields a scene file can name for Field actors.
var Fields = map[string]Func2{
	"x":      func(x, _ float64) float64 { return x },
	"y":      func(_, y float64) float64 { return y },
	"radius": math.Hypot,
	"gauss":  func(x, y float64) float64 { return math.Exp(-(x*x + y*y)) },
	"saddle": func(x, y float64) float64 { return x*x - y*y },
	"ripple": func(x, y float64) float64 {
		r := math.Hypot(x, y)
		if r == 0 {
			return 1
		}
		return math.Sin(r) / r
	},
	"waves": func(x, y float64) float64 { return math.Sin(x) * math.Cos(y) },
}

// Affine wraps a curve as amp*f(freq*x+shift)+offset.
func Affine(f Func1, amp, freq, shift, offset float64) Func1 {
	return func(x float64) float64 { return amp*f(freq*x+shift) + offset }
}

// LookupFunction finds a named curve.
func LookupFunction(name string) (Func1, error) {
	if f, ok := Functions[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unknown function %q (known: %v)", name, sortedKeys(Functions))
}

// LookupField finds a named scalar field.
func LookupField(name string) (Func2, error) {
	if f, ok := Fields[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unknown field %q (known: %v)", name, sortedKeys(Fields))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AffineField wraps a field as amp*f(freq*x+shift, freq*y+shift)+offset.
func AffineField(f Func2, amp, freq, shift, offset float64) Func2 {
	return func(x, y float64) float64 { return amp*f(freq*x+shift, freq*y+shift) + offset }
}

func FunctionNames() []string { return sortedKeys(Functions) }
func FieldNames() []string    { return sortedKeys(Fields) }
