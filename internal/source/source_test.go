package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 3)
	writePNG(t, filepath.Join(dir, "a.png"), 2, 5)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	src, err := Open(dir)
	require.NoError(t, err)
	defer src.Close()
	require.Equal(t, 2, src.PageCount())

	w, h, err := src.PageSize(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, []float64{w, h})

	img, err := src.Render(1, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	_, err = src.Render(2, 0)
	assert.ErrorIs(t, err, ErrPageRange)
}

func TestImageSourceEmptyDir(t *testing.T) {
	_, err := NewImageSource(t.TempDir())
	assert.Error(t, err)
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open("slides.pptx")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestQRSource(t *testing.T) {
	q, err := NewQRSource("https://example.org", 128)
	require.NoError(t, err)
	w, h, err := q.PageSize(0)
	require.NoError(t, err)
	assert.Equal(t, 128.0, w)
	assert.Equal(t, 128.0, h)

	img, err := q.Render(0, 72)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	_, err = q.Render(1, 72)
	assert.ErrorIs(t, err, ErrPageRange)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.png")
	writePNG(t, path, 6, 6)

	c := NewCache()
	a, err := c.Page(path, 0, 0)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))
	b, err := c.Page(path, 0, 0)
	require.NoError(t, err, "second load is served from memory")
	assert.Same(t, a, b)

	_, err = c.QRCode("hi", 64, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	red, err := c.QRCode("hi", 64, color.RGBA{R: 255, A: 255}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	r, g, b, _ := red.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "background stays white")

	var sawRed bool
	bounds := red.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y && !sawRed; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if r, g, b, _ := red.At(x, y).RGBA(); r == 0xffff && g == 0 && b == 0 {
				sawRed = true
				break
			}
		}
	}
	assert.True(t, sawRed, "modules drawn in the foreground colour")
}

func TestContentBoundsAndTrim(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := 50; y < 150; y++ {
		for x := 60; x < 140; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	box := ContentBounds(img, DefaultEdgeThreshold)
	assert.True(t, box.Min.X >= 58 && box.Min.X <= 60, "box %v", box)
	assert.True(t, box.Max.Y >= 150 && box.Max.Y <= 152, "box %v", box)

	trimmed := Trim(img, 4)
	b := trimmed.Bounds()
	assert.InDelta(t, 80+8, b.Dx(), 4)
	assert.InDelta(t, 100+8, b.Dy(), 4)

	blank := image.NewGray(image.Rect(0, 0, 20, 20))
	assert.Equal(t, blank.Bounds(), Trim(blank, 2).Bounds())
	assert.True(t, ContentBounds(blank, DefaultEdgeThreshold).Empty())
}

func TestTrimmedPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 10; y < 20; y++ {
		for x := 10; x < 30; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	c := NewCache()
	got, err := c.TrimmedPage(path, 0, 0, 0)
	require.NoError(t, err)
	assert.Less(t, got.Bounds().Dx(), 40)
	assert.Equal(t, 2, c.Len(), "full page and trimmed page are both cached")
}
