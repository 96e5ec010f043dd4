package param

import (
	"fmt"
	"sort"
)

// Snapshot is the resolved parameter set for one draw call.
type Snapshot struct {
	values map[string]any
}

// SnapshotOf builds a Snapshot directly from values, mostly for tests and for
// kinds that call each other.
func SnapshotOf(values Args) Snapshot {
	m := make(map[string]any, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Snapshot{values: m}
}

func (s Snapshot) Lookup(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok && v != nil
}

func (s Snapshot) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Names returns the parameter names, sorted.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of s with name set to v.
func (s Snapshot) With(name string, v any) Snapshot {
	m := make(map[string]any, len(s.values)+1)
	for k, old := range s.values {
		m[k] = old
	}
	m[name] = v
	return Snapshot{values: m}
}

// Get returns the parameter as T.
func Get[T any](s Snapshot, name string) (T, error) {
	var zero T
	v, ok := s.Lookup(name)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrMissing, name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T, want %T", ErrType, name, v, zero)
	}
	return t, nil
}

// GetOr returns the parameter as T, or def when it is absent.
func GetOr[T any](s Snapshot, name string, def T) (T, error) {
	if !s.Has(name) {
		return def, nil
	}
	return Get[T](s, name)
}

func (s Snapshot) Float(name string) (float64, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissing, name)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %q is %T, want number", ErrType, name, v)
	}
	return f, nil
}

func (s Snapshot) FloatOr(name string, def float64) (float64, error) {
	if !s.Has(name) {
		return def, nil
	}
	return s.Float(name)
}

func (s Snapshot) Int(name string) (int, error) {
	f, err := s.Float(name)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func (s Snapshot) Bool(name string) (bool, error) {
	return Get[bool](s, name)
}

func (s Snapshot) String(name string) (string, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissing, name)
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return "", fmt.Errorf("%w: %q is %T, want string", ErrType, name, v)
}

func (s Snapshot) StringOr(name, def string) (string, error) {
	if !s.Has(name) {
		return def, nil
	}
	return s.String(name)
}

// Floats accepts []float64, []int or []any of numbers.
func (s Snapshot) Floats(name string) ([]float64, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissing, name)
	}
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []int:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return nil, fmt.Errorf("%w: %q[%d] is %T, want number", ErrType, name, i, e)
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q is %T, want list of numbers", ErrType, name, v)
}

// Items returns a list parameter as []any.
func (s Snapshot) Items(name string) ([]any, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissing, name)
	}
	switch x := v.(type) {
	case []any:
		return x, nil
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, nil
	case []float64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, nil
	case []int:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q is %T, want list", ErrType, name, v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	}
	return 0, false
}
