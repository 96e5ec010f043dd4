// Package scene reads and writes YAML scene files: the canvas, the frame
// range and the cast of actors with their parameters.
package scene

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/picturebox/internal/canvas"
	"github.com/ivlev/picturebox/internal/cast"
	"github.com/ivlev/picturebox/internal/interp"
	"github.com/ivlev/picturebox/internal/timeline"
)

const Version = "1"

var ErrInvalid = errors.New("invalid scene")

// Scene is one animation: a canvas and the actors performing on it.
type Scene struct {
	Version string      `yaml:"version"`
	Canvas  CanvasSpec  `yaml:"canvas"`
	Frames  FrameRange  `yaml:"frames,omitempty"`
	Output  string      `yaml:"output,omitempty"` // frame path pattern, one %d verb
	Shadow  bool        `yaml:"shadow"`
	Actors  []ActorSpec `yaml:"actors"`

	dir string // relative picture paths resolve against it
}

type CanvasSpec struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background,omitempty"`
	YUp        bool   `yaml:"y_up,omitempty"`
}

// FrameRange is half-open; a zero End means "until the last actor leaves".
type FrameRange struct {
	Start Mark `yaml:"start,omitempty"`
	End   Mark `yaml:"end,omitempty"`
}

// ActorSpec describes one actor. Params are kept as raw nodes and only
// interpreted by Build, since their meaning depends on the kind.
type ActorSpec struct {
	Name      string               `yaml:"name"`
	Kind      string               `yaml:"kind"`
	TS        []Mark               `yaml:"ts,flow"`
	HasShadow *yaml.Node           `yaml:"has_shadow,omitempty"`
	Params    map[string]yaml.Node `yaml:"params"`
}

// Mark is a frame position written either as a number or as an "m:s:f"
// timecode.
type Mark float64

func (m *Mark) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!int", "!!float":
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		*m = Mark(f)
		return nil
	case "!!str":
		n, err := interp.ParseTimecode(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*m = Mark(n)
		return nil
	}
	return fmt.Errorf("line %d: frame mark %q is neither a number nor a timecode", value.Line, value.Value)
}

func (m Mark) MarshalYAML() (any, error) {
	return float64(m), nil
}

func marks(ms []Mark) []float64 {
	out := make([]float64, len(ms))
	for i, m := range ms {
		out[i] = float64(m)
	}
	return out
}

// Range returns the frames to render.
func (s *Scene) Range() (start, end int) {
	start, end = int(s.Frames.Start), int(s.Frames.End)
	if end != 0 {
		return start, end
	}
	for _, a := range s.Actors {
		if n := len(a.TS); n > 0 {
			end = max(end, int(math.Ceil(float64(a.TS[n-1]))))
		}
	}
	return start, end
}

// RasterOptions translates the canvas section.
func (s *Scene) RasterOptions() (canvas.RasterOptions, error) {
	opts := canvas.RasterOptions{Width: s.Canvas.Width, Height: s.Canvas.Height, YUp: s.Canvas.YUp}
	if s.Canvas.Background != "" {
		bg, err := canvas.ParseColor(s.Canvas.Background)
		if err != nil {
			return opts, fmt.Errorf("%w: background: %w", ErrInvalid, err)
		}
		opts.Background = bg
	}
	return opts, nil
}

// Validate checks everything that can be checked without loading pictures.
func (s *Scene) Validate() error {
	var errs []error
	if s.Version != "" && s.Version != Version {
		errs = append(errs, fmt.Errorf("unsupported version %q", s.Version))
	}
	if s.Canvas.Width <= 0 || s.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d", s.Canvas.Width, s.Canvas.Height))
	}
	if _, err := s.RasterOptions(); err != nil {
		errs = append(errs, err)
	}
	if s.Output != "" && strings.Count(s.Output, "%") == 0 {
		errs = append(errs, fmt.Errorf("output %q has no frame number verb", s.Output))
	}
	if start, end := s.Range(); end < start {
		errs = append(errs, fmt.Errorf("frames end %d before start %d", end, start))
	}

	seen := make(map[string]bool, len(s.Actors))
	for i, a := range s.Actors {
		label := a.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			errs = append(errs, fmt.Errorf("actor %s: no name", label))
		} else if seen[a.Name] {
			errs = append(errs, fmt.Errorf("actor %s: duplicate name", label))
		}
		seen[a.Name] = true
		if _, err := cast.New(a.Kind); err != nil {
			errs = append(errs, fmt.Errorf("actor %s: %w", label, err))
		}
		if err := timeline.Validate(marks(a.TS)); err != nil {
			errs = append(errs, fmt.Errorf("actor %s: %w", label, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
