// Package param resolves actor parameters that are either fixed or a function
// of the current phase and local time.
package param

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrMissing = errors.New("missing parameter")
	ErrType    = errors.New("wrong parameter type")
	ErrResolve = errors.New("parameter resolver failed")
)

// Func computes a parameter value for a phase and a local time in [0,1).
type Func[T any] func(phase int, tt float64) (T, error)

// Value is either a constant or a Func.
type Value[T any] struct {
	static T
	fn     Func[T]
}

// Static wraps a constant.
func Static[T any](v T) Value[T] {
	return Value[T]{static: v}
}

// Dynamic wraps a resolver that cannot fail.
func Dynamic[T any](fn func(phase int, tt float64) T) Value[T] {
	return Value[T]{fn: func(phase int, tt float64) (T, error) {
		return fn(phase, tt), nil
	}}
}

// DynamicE wraps a resolver that may fail.
func DynamicE[T any](fn Func[T]) Value[T] {
	return Value[T]{fn: fn}
}

func (v Value[T]) IsDynamic() bool {
	return v.fn != nil
}

func (v Value[T]) Resolve(phase int, tt float64) (T, error) {
	if v.fn == nil {
		return v.static, nil
	}
	return v.fn(phase, tt)
}

func (v Value[T]) resolveAny(phase int, tt float64) (any, error) {
	return v.Resolve(phase, tt)
}

// Entry is implemented by every Value regardless of its type parameter.
type Entry interface {
	IsDynamic() bool
	resolveAny(phase int, tt float64) (any, error)
}

// Args are the named construction arguments of an actor. A value that is a
// Value[T] keeps its tag; anything else is a constant.
type Args map[string]any

// Set holds construction arguments split into static and dynamic groups.
type Set struct {
	static  map[string]any
	dynamic map[string]Entry
}

// NewSet classifies args once. The caller's map is not retained.
func NewSet(args Args) *Set {
	s := &Set{
		static:  make(map[string]any, len(args)),
		dynamic: make(map[string]Entry),
	}
	for k, v := range args {
		e, ok := v.(Entry)
		switch {
		case ok && e.IsDynamic():
			s.dynamic[k] = e
		case ok:
			// static Value: unwrap now so snapshots hold plain values
			sv, _ := e.resolveAny(0, 0)
			s.static[k] = sv
		default:
			s.static[k] = v
		}
	}
	return s
}

// Dynamic reports the names of the dynamic entries, sorted.
func (s *Set) Dynamic() []string {
	names := make([]string, 0, len(s.dynamic))
	for k := range s.dynamic {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len is the total number of parameters.
func (s *Set) Len() int {
	return len(s.static) + len(s.dynamic)
}

// Resolve evaluates every dynamic entry for (phase, tt) and merges the results
// with the static entries into a new Snapshot.
func (s *Set) Resolve(phase int, tt float64) (Snapshot, error) {
	values := make(map[string]any, s.Len())
	for k, v := range s.static {
		values[k] = v
	}
	// sorted so the first failure reported is deterministic
	for _, k := range s.Dynamic() {
		v, err := s.dynamic[k].resolveAny(phase, tt)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: %q at phase %d t=%.4f: %w", ErrResolve, k, phase, tt, err)
		}
		values[k] = v
	}
	return Snapshot{values: values}, nil
}
