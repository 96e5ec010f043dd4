package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/canvas"
	"github.com/ivlev/picturebox/internal/config"
	"github.com/ivlev/picturebox/internal/scene"
)

// marker writes which pass it was drawn in.
type marker struct{}

func (marker) Act(cue actor.Cue) error {
	label := "main"
	if cue.Shadow {
		label = "shadow"
	}
	cue.Canvas.DrawText(0, 0, label, canvas.DefaultStyle().WithAlpha(cue.Alpha))
	return nil
}

var errBoom = errors.New("boom")

type failing struct{}

func (failing) Act(actor.Cue) error { return errBoom }

func newActor(t *testing.T, name string, b actor.Behavior, ts ...float64) *actor.Actor {
	t.Helper()
	a, err := actor.New(name, ts, b)
	require.NoError(t, err)
	return a
}

func TestPerformFrameSequence(t *testing.T) {
	rec := canvas.NewRecorder()
	actors := []*actor.Actor{newActor(t, "m", marker{}, 0, 1, 2, 3)}

	require.NoError(t, Perform(context.Background(), rec, actors, 0, 3, "%d", true))
	assert.Equal(t, []string{"0", "1", "2"}, rec.Exports())
	assert.Equal(t, 3, rec.Count("clear"))
	assert.Equal(t, 3, rec.Count("update"))

	// frame 0 is the start of the entrance, fully transparent
	var ops []string
	for _, c := range rec.Calls() {
		switch c.Op {
		case "text":
			ops = append(ops, c.Text)
		case "clear", "export":
			ops = append(ops, c.Op)
		}
	}
	assert.Equal(t, []string{
		"clear", "export",
		"clear", "shadow", "main", "export",
		"clear", "shadow", "main", "export",
	}, ops)
}

func TestPerformWithoutShadow(t *testing.T) {
	rec := canvas.NewRecorder()
	actors := []*actor.Actor{newActor(t, "m", marker{}, 0, 1, 2, 3)}
	require.NoError(t, Perform(context.Background(), rec, actors, 0, 3, "f%03d.png", false))
	assert.Equal(t, []string{"f000.png", "f001.png", "f002.png"}, rec.Exports())
	for _, c := range rec.Primitives() {
		assert.Equal(t, "main", c.Text)
	}
}

func TestPerformEmptyRange(t *testing.T) {
	rec := canvas.NewRecorder()
	require.NoError(t, Perform(context.Background(), rec, nil, 5, 5, "%d", true))
	assert.Empty(t, rec.Calls())
}

func TestPerformOutOfRangeActors(t *testing.T) {
	rec := canvas.NewRecorder()
	actors := []*actor.Actor{newActor(t, "late", marker{}, 10, 11, 12, 13)}
	require.NoError(t, Perform(context.Background(), rec, actors, 0, 3, "%d", true))
	assert.Empty(t, rec.Primitives())
	assert.Len(t, rec.Exports(), 3)
}

func TestPerformStopsOnError(t *testing.T) {
	rec := canvas.NewRecorder()
	actors := []*actor.Actor{
		newActor(t, "ok", marker{}, 0, 1, 2, 3),
		newActor(t, "bad", failing{}, 1, 2, 3, 4),
	}
	err := Perform(context.Background(), rec, actors, 0, 4, "%d", false)
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, []string{"0", "1"}, rec.Exports(), "failing frame 2 is not exported")
}

func TestKeepGoing(t *testing.T) {
	rec := canvas.NewRecorder()
	actors := []*actor.Actor{
		newActor(t, "bad", failing{}, 0, 1, 2, 3),
		newActor(t, "ok", marker{}, 0, 1, 2, 3),
	}
	err := Run(context.Background(), rec, actors, Options{Start: 0, End: 3, Pattern: "%d", KeepGoing: true})
	require.ErrorIs(t, err, errBoom)
	assert.Len(t, rec.Exports(), 3)
	assert.Equal(t, 2, rec.Count("text"), "healthy actor still draws on frames 1 and 2")
}

func TestPerformCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := canvas.NewRecorder()
	err := Perform(ctx, rec, nil, 0, 10, "%d", false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Exports())
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		pattern string
		ok      bool
	}{
		{"%d", true},
		{"out/frame_%04d.png", true},
		{"100%%_%d.png", true},
		{"frame.png", false},
		{"%d_%d.png", false},
		{"%s.png", false},
		{"%", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			err := ValidatePattern(tt.pattern)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrPattern)
			}
		})
	}
	p, err := FormatPath("out/frame_%04d.png", 7)
	require.NoError(t, err)
	assert.Equal(t, "out/frame_0007.png", p)
}

func TestPerformParallel(t *testing.T) {
	var (
		mu   sync.Mutex
		recs []*canvas.Recorder
	)
	factory := func() (canvas.Canvas, error) {
		r := canvas.NewRecorder()
		mu.Lock()
		recs = append(recs, r)
		mu.Unlock()
		return r, nil
	}
	actors := []*actor.Actor{newActor(t, "m", marker{}, 0, 5, 15, 20)}

	var progress []int
	var pmu sync.Mutex
	opts := Options{Start: 0, End: 20, Pattern: "%02d", Shadow: true, Workers: 4, Progress: func(done, _ int) {
		pmu.Lock()
		progress = append(progress, done)
		pmu.Unlock()
	}}
	require.NoError(t, PerformParallel(context.Background(), factory, actors, opts))

	assert.LessOrEqual(t, len(recs), 4)
	var exports []string
	for _, r := range recs {
		exports = append(exports, r.Exports()...)
	}
	sort.Strings(exports)
	require.Len(t, exports, 20)
	assert.Equal(t, "00", exports[0])
	assert.Equal(t, "19", exports[19])
	assert.Len(t, progress, 20)
}

func TestPerformParallelError(t *testing.T) {
	factory := func() (canvas.Canvas, error) { return canvas.NewRecorder(), nil }
	actors := []*actor.Actor{newActor(t, "bad", failing{}, 0, 1, 2, 3)}
	err := PerformParallel(context.Background(), factory, actors, Options{Start: 0, End: 3, Pattern: "%d", Workers: 2})
	assert.ErrorIs(t, err, errBoom)

	err = PerformParallel(context.Background(), factory, actors, Options{Start: 0, End: 3, Pattern: "x"})
	assert.ErrorIs(t, err, ErrPattern)
}

func TestProjectDryRun(t *testing.T) {
	sc, err := scene.ExampleScene()
	require.NoError(t, err)
	cfg := &config.Config{DryRun: true, FrameStart: 40, FrameEnd: 50}
	rep, err := NewProject(cfg, sc, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, rep.Frames)
	assert.Equal(t, 5, rep.Actors)
	assert.Positive(t, rep.Primitives)
}

func TestProjectWritesFrames(t *testing.T) {
	sc, err := scene.Decode(strings.NewReader(`
canvas: {width: 64, height: 48}
actors:
  - name: axes
    kind: axis
    ts: [0, 2, 4, 6]
    params: {x0: 4, y0: 4, x1: 60, y1: 44}
`))
	require.NoError(t, err)

	dir := t.TempDir()
	for _, workers := range []int{1, 3} {
		pattern := filepath.Join(dir, "w"+string(rune('0'+workers)), "f_%02d.png")
		cfg := &config.Config{OutputPattern: pattern, Workers: workers, ShowStats: true, BenchmarkLog: filepath.Join(dir, "benchmark.log")}
		rep, err := NewProject(cfg, sc, nil).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 6, rep.Frames)
		for f := 0; f < 6; f++ {
			p, err := FormatPath(pattern, f)
			require.NoError(t, err)
			assert.FileExists(t, p)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "benchmark.log"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "Frames: 6"))
}

func TestProjectStreamNeedsVideo(t *testing.T) {
	sc, err := scene.ExampleScene()
	require.NoError(t, err)
	_, err = NewProject(&config.Config{Stream: true}, sc, nil).Run(context.Background())
	assert.Error(t, err)
}
