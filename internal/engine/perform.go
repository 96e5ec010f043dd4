package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/canvas"
)

var ErrPattern = errors.New("output pattern needs exactly one %d verb")

// ValidatePattern accepts patterns with a single %d, optionally zero padded
// as in %04d; %% is a literal percent sign.
func ValidatePattern(pattern string) error {
	verbs := 0
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			continue
		}
		if i+1 < len(pattern) && pattern[i+1] == '%' {
			i++
			continue
		}
		j := i + 1
		for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
			j++
		}
		if j >= len(pattern) || pattern[j] != 'd' {
			return fmt.Errorf("%w: %q", ErrPattern, pattern)
		}
		verbs++
		i = j
	}
	if verbs != 1 {
		return fmt.Errorf("%w: %q", ErrPattern, pattern)
	}
	return nil
}

// FormatPath substitutes the frame number into pattern.
func FormatPath(pattern string, frame int) (string, error) {
	if err := ValidatePattern(pattern); err != nil {
		return "", err
	}
	return fmt.Sprintf(pattern, frame), nil
}

// Options controls a performance over the half-open range [Start, End).
type Options struct {
	Start, End int
	Pattern    string
	Shadow     bool

	// KeepGoing logs a failing actor and carries on with the rest of the
	// cast; all failures are joined into the returned error.
	KeepGoing bool

	// Workers used by PerformParallel; values below 1 mean one.
	Workers int

	// Progress, if set, is called after every exported frame.
	Progress func(done, total int)
}

// RenderFrame draws one frame: clear, shadow pass over every actor when
// shadow is set, main pass, update. Actors draw in slice order.
func RenderFrame(c canvas.Canvas, actors []*actor.Actor, frame int, shadow, keepGoing bool) error {
	c.Clear()
	passes := []bool{false}
	if shadow {
		passes = []bool{true, false}
	}
	var errs []error
	for _, pass := range passes {
		for _, a := range actors {
			err := a.Draw(c, frame, pass)
			if err == nil {
				continue
			}
			if !keepGoing {
				return err
			}
			log.Error().Err(err).Str("actor", a.Name()).Int("frame", frame).Bool("shadow", pass).Msg("[!] Ошибка актёра")
			errs = append(errs, err)
		}
	}
	if err := c.Update(); err != nil {
		errs = append(errs, fmt.Errorf("frame %d: update: %w", frame, err))
	}
	return errors.Join(errs...)
}

func renderAndExport(c canvas.Canvas, actors []*actor.Actor, frame int, opts Options) (drawErr error, err error) {
	path, err := FormatPath(opts.Pattern, frame)
	if err != nil {
		return nil, err
	}
	drawErr = RenderFrame(c, actors, frame, opts.Shadow, opts.KeepGoing)
	if drawErr != nil && !opts.KeepGoing {
		return nil, drawErr
	}
	if err := c.ExportRaster(path); err != nil {
		return drawErr, fmt.Errorf("frame %d: export %s: %w", frame, path, err)
	}
	log.Debug().Int("frame", frame).Str("path", path).Msg("[>] Кадр готов")
	return drawErr, nil
}

// Perform renders frames [frameStart, frameEnd) strictly in order, exporting
// each to fmt.Sprintf(pattern, frame). The first actor error stops it.
func Perform(ctx context.Context, c canvas.Canvas, actors []*actor.Actor, frameStart, frameEnd int, pattern string, drawShadow bool) error {
	return Run(ctx, c, actors, Options{Start: frameStart, End: frameEnd, Pattern: pattern, Shadow: drawShadow})
}

// Run is Perform with the full option set. The context is checked between
// frames.
func Run(ctx context.Context, c canvas.Canvas, actors []*actor.Actor, opts Options) error {
	if err := ValidatePattern(opts.Pattern); err != nil {
		return err
	}
	total := max(opts.End-opts.Start, 0)
	var errs []error
	for frame := opts.Start; frame < opts.End; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		drawErr, err := renderAndExport(c, actors, frame, opts)
		if err != nil {
			return errors.Join(append(errs, err)...)
		}
		if drawErr != nil {
			errs = append(errs, drawErr)
		}
		if opts.Progress != nil {
			opts.Progress(frame-opts.Start+1, total)
		}
	}
	return errors.Join(errs...)
}

// CanvasFactory makes one canvas per worker. If the canvas has a Release
// method it is called when the worker is done.
type CanvasFactory func() (canvas.Canvas, error)

// PerformParallel renders frames on several workers, each with its own
// canvas. Frames finish out of order, so every resolver must be a pure
// function of (phase, t).
func PerformParallel(ctx context.Context, newCanvas CanvasFactory, actors []*actor.Actor, opts Options) error {
	if err := ValidatePattern(opts.Pattern); err != nil {
		return err
	}
	total := max(opts.End-opts.Start, 0)
	if total == 0 {
		return nil
	}
	workers := min(max(opts.Workers, 1), total)

	g, ctx := errgroup.WithContext(ctx)
	frames := make(chan int)
	g.Go(func() error {
		defer close(frames)
		for f := opts.Start; f < opts.End; f++ {
			select {
			case frames <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var (
		mu   sync.Mutex
		errs []error
		done atomic.Int64
	)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			c, err := newCanvas()
			if err != nil {
				return err
			}
			if r, ok := c.(interface{ Release() }); ok {
				defer r.Release()
			}
			for f := range frames {
				drawErr, err := renderAndExport(c, actors, f, opts)
				if err != nil {
					return err
				}
				if drawErr != nil {
					mu.Lock()
					errs = append(errs, drawErr)
					mu.Unlock()
				}
				if opts.Progress != nil {
					opts.Progress(int(done.Add(1)), total)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Join(append(errs, err)...)
	}
	return errors.Join(errs...)
}
