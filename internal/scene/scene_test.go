package scene

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/picturebox/internal/canvas"
	"github.com/ivlev/picturebox/internal/timeline"
)

func decode(t *testing.T, doc string) (*Scene, error) {
	t.Helper()
	return Decode(strings.NewReader(doc))
}

func TestMarks(t *testing.T) {
	var v struct {
		TS []Mark `yaml:"ts"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(`ts: [0, "0:1:0", 30.5, "1:0"]`), &v))
	assert.Equal(t, []float64{0, 24, 30.5, 24}, marks(v.TS))

	err := yaml.Unmarshal([]byte(`ts: [soon]`), &v)
	assert.Error(t, err)
}

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"enter", timeline.Enter, true},
		{"leave", timeline.Leave, true},
		{"2", 2, true},
		{"-1", timeline.Leave, true},
		{"-2", 0, false},
		{"middle", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePhase(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExamplePerforms(t *testing.T) {
	s, err := ExampleScene()
	require.NoError(t, err)
	start, end := s.Range()
	assert.Equal(t, 0, start)
	assert.Equal(t, 96, end)

	actors, err := s.Build()
	require.NoError(t, err)
	require.Len(t, actors, 5)
	assert.Equal(t, "title", actors[0].Name())

	rec := canvas.NewRecorder()
	for f := start; f < end; f++ {
		for _, a := range actors {
			require.NoError(t, a.Draw(rec, f, true), "%s frame %d", a.Name(), f)
			require.NoError(t, a.Draw(rec, f, false), "%s frame %d", a.Name(), f)
		}
	}
	assert.Positive(t, rec.Count("blit"))
	assert.Zero(t, rec.Count("rectangle"), "picture opts out of shadows")
}

func TestDynamicParams(t *testing.T) {
	s, err := decode(t, `
canvas: {width: 100, height: 100}
actors:
  - name: label
    kind: text
    ts: [0, 10, 20, 30]
    has_shadow: {by_phase: {1: true}, default: false}
    params:
      x: {tween: {from: 0, to: 50, phase: 1}}
      y: 10
      s: hi
      color: {by_phase: {enter: "#ff0000", leave: "#0000ff"}, default: "#00ff00"}
`)
	require.NoError(t, err)
	actors, err := s.Build()
	require.NoError(t, err)
	a := actors[0]

	rec := canvas.NewRecorder()
	require.NoError(t, a.Draw(rec, 15, false))
	require.NoError(t, a.Draw(rec, 25, false))
	texts := rec.Primitives()
	require.Len(t, texts, 2)
	assert.InDelta(t, 25, texts[0].Args[0], 1e-9)
	assert.Equal(t, 50.0, texts[1].Args[0])
	assert.Equal(t, canvas.MustParseColor("#00ff00"), texts[0].Style.Color)
	assert.Equal(t, canvas.MustParseColor("#0000ff"), texts[1].Style.Color)

	rec.Forget()
	require.NoError(t, a.Draw(rec, 5, true))
	require.NoError(t, a.Draw(rec, 15, true))
	assert.Equal(t, 1, rec.Count("text"), "shadow only during the act phase")
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", ``, "empty"},
		{"unknown field", "canvas: {width: 10, height: 10}\ncolour: red\n", "colour"},
		{"no size", "canvas: {width: 0, height: 10}\n", "canvas size"},
		{"bad kind", "canvas: {width: 10, height: 10}\nactors:\n  - {name: a, kind: sprite, ts: [0, 1, 2, 3]}\n", "sprite"},
		{"short ts", "canvas: {width: 10, height: 10}\nactors:\n  - {name: a, kind: text, ts: [0, 1, 2]}\n", "breakpoints"},
		{"duplicate", "canvas: {width: 10, height: 10}\nactors:\n  - {name: a, kind: text, ts: [0, 1, 2, 3]}\n  - {name: a, kind: axis, ts: [0, 1, 2, 3]}\n", "duplicate"},
		{"output", "canvas: {width: 10, height: 10}\noutput: frame.png\n", "frame number"},
		{"version", "version: \"7\"\ncanvas: {width: 10, height: 10}\n", "version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	s, err := decode(t, `
canvas: {width: 10, height: 10}
actors:
  - name: curve
    kind: function
    ts: [0, 1, 2, 3]
    params: {f: wobble}
`)
	require.NoError(t, err)
	_, err = s.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curve")
	assert.Contains(t, err.Error(), "wobble")
}

func TestPictureRelativePath(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "logo.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 3, 2))))
	require.NoError(t, f.Close())

	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
canvas: {width: 10, height: 10}
actors:
  - name: logo
    kind: picture
    ts: [0, 1, 2, 3]
    params: {x0: 0, y0: 0, x1: 3, y1: 2, image: {image: logo.png}}
`), 0644))

	s, err := Read(path)
	require.NoError(t, err)
	actors, err := s.Build()
	require.NoError(t, err)

	rec := canvas.NewRecorder()
	require.NoError(t, actors[0].Draw(rec, 1, false))
	require.Equal(t, 1, rec.Count("blit"))
	assert.Equal(t, "3x2", rec.Primitives()[0].Text)
}

func TestQRCodeColors(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		ok    bool
	}{
		{"default", "", true},
		{"colored", `, color: "#ff0000", background: "#ffffc0"`, true},
		{"bad color", `, color: "nope"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := decode(t, `
canvas: {width: 10, height: 10}
actors:
  - name: qr
    kind: picture
    ts: [0, 1, 2, 3]
    params: {x0: 0, y0: 0, x1: 5, y1: 5, image: {qrcode: hello, size: 40`+tt.extra+`}}
`)
			require.NoError(t, err)
			_, err = s.Build()
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestWriteRead(t *testing.T) {
	s, err := ExampleScene()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "nested", "scene.yaml")
	require.NoError(t, Write(s, path))

	back, err := Read(path)
	require.NoError(t, err)
	require.Len(t, back.Actors, len(s.Actors))
	for i := range s.Actors {
		assert.Equal(t, s.Actors[i].Name, back.Actors[i].Name)
		assert.Equal(t, marks(s.Actors[i].TS), marks(back.Actors[i].TS))
	}
	_, err = back.Build()
	assert.NoError(t, err)
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	names := []string{"scene_a.yaml", "scene_b.yml", "scene_c.yaml"}
	for i, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(p, mod, mod))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	latest, err := FindLatest(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scene_c.yaml"), latest)

	_, err = FindLatest(t.TempDir())
	assert.Error(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(GeneratePath(dir)), "scene_"))
}
