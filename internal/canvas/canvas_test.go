package canvas

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRaster(t *testing.T, yUp bool) *Raster {
	t.Helper()
	r, err := NewRaster(RasterOptions{Width: 100, Height: 80, Background: color.White, YUp: yUp})
	require.NoError(t, err)
	return r
}

func isBackground(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func countInk(img *image.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isBackground(img.At(x, y)) {
				n++
			}
		}
	}
	return n
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#a0a0c0")
	require.NoError(t, err)
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	assert.Equal(t, color.NRGBA{0xa0, 0xa0, 0xc0, 0xff}, n)

	c, err = ParseColor("#f00")
	require.NoError(t, err)
	n = color.NRGBAModel.Convert(c).(color.NRGBA)
	assert.Equal(t, color.NRGBA{0xff, 0, 0, 0xff}, n)

	_, err = ParseColor("red")
	assert.Error(t, err)
}

func TestStylePaint(t *testing.T) {
	st := DefaultStyle().WithColor(color.RGBA{255, 0, 0, 255}).WithAlpha(0.5)
	p := st.Paint()
	assert.Equal(t, uint8(255), p.R)
	assert.Equal(t, uint8(128), p.A)

	assert.Equal(t, uint8(0), DefaultStyle().WithAlpha(0).Paint().A)
}

func TestParseAlign(t *testing.T) {
	a, err := ParseAlign("centre")
	require.NoError(t, err)
	assert.Equal(t, AlignCenter, a)
	_, err = ParseAlign("justify")
	assert.Error(t, err)
}

func TestRasterLine(t *testing.T) {
	r := newTestRaster(t, false)
	r.Line(10, 10, 90, 10, DefaultStyle().WithColor(color.Black))

	assert.False(t, isBackground(r.Image().At(50, 10)))
	assert.True(t, isBackground(r.Image().At(50, 40)))
}

func TestRasterYUp(t *testing.T) {
	r := newTestRaster(t, true)
	r.Rectangle(0, 0, 20, 10, true, DefaultStyle())

	// y-up puts user y=5 near the bottom row of the image
	assert.False(t, isBackground(r.Image().At(10, 75)))
	assert.True(t, isBackground(r.Image().At(10, 5)))
}

func TestRasterZeroAlphaDrawsNothing(t *testing.T) {
	r := newTestRaster(t, false)
	st := DefaultStyle().WithAlpha(0)
	r.Line(0, 0, 100, 80, st)
	r.Rectangle(10, 10, 50, 50, true, st)
	r.DrawText(10, 40, "hidden", st)
	assert.Equal(t, 0, countInk(r.Image()))
}

func TestRasterClear(t *testing.T) {
	r := newTestRaster(t, false)
	r.Rectangle(0, 0, 100, 80, true, DefaultStyle())
	assert.Equal(t, 100*80, countInk(r.Image()))
	r.Clear()
	assert.Equal(t, 0, countInk(r.Image()))
}

func TestRasterText(t *testing.T) {
	r := newTestRaster(t, false)
	r.DrawText(5, 40, "Hello", DefaultStyle())
	assert.Greater(t, countInk(r.Image()), 20)
}

func TestRasterTransform(t *testing.T) {
	r := newTestRaster(t, false)
	r.Push()
	r.Translate(50, 40)
	r.Rectangle(-2, -2, 2, 2, true, DefaultStyle())
	r.Pop()
	assert.False(t, isBackground(r.Image().At(50, 40)))
	assert.True(t, isBackground(r.Image().At(1, 1)))

	r.Clear()
	r.Center()
	r.Rotate(math.Pi / 2)
	// (10,0) rotated a quarter turn lands on (0,10) relative to centre
	r.Rectangle(9, -1, 11, 1, true, DefaultStyle())
	r.Reset()
	assert.False(t, isBackground(r.Image().At(50, 50)))
	assert.True(t, isBackground(r.Image().At(60, 40)))
}

func TestRasterClipsOffCanvas(t *testing.T) {
	r := newTestRaster(t, false)
	r.FillPolygon([]float64{-500, 500, 500, -500}, []float64{-500, -500, 500, 500}, DefaultStyle())
	assert.Equal(t, 100*80, countInk(r.Image()))
}

func TestRasterBlit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 0
	}
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}

	r := newTestRaster(t, false)
	r.BlitImage(20, 20, 40, 40, src, DefaultStyle())
	assert.False(t, isBackground(r.Image().At(30, 30)))
	assert.True(t, isBackground(r.Image().At(50, 50)))

	r.Clear()
	r.BlitImage(20, 20, 40, 40, src, DefaultStyle().WithAlpha(0.5))
	c := color.RGBAModel.Convert(r.Image().At(30, 30)).(color.RGBA)
	assert.InDelta(t, 128, int(c.R), 3)
}

func TestRasterExport(t *testing.T) {
	r := newTestRaster(t, false)
	r.Line(0, 0, 99, 79, DefaultStyle())
	path := filepath.Join(t.TempDir(), "nested", "frame_00001.png")
	require.NoError(t, r.Update())
	require.NoError(t, r.ExportRaster(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 80), img.Bounds())
}

func TestNewRasterRejectsBadSize(t *testing.T) {
	_, err := NewRaster(RasterOptions{Width: 0, Height: 10})
	assert.Error(t, err)
	_, err = NewRasterOn(image.NewRGBA(image.Rect(0, 0, 5, 5)), RasterOptions{Width: 6, Height: 5})
	assert.Error(t, err)
}

func TestClip(t *testing.T) {
	sq := []point{{-10, -10}, {-10, 10}, {10, 10}, {10, -10}}
	got := clip(sq, point{5, 5})
	require.NotEmpty(t, got)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.x, 0.0)
		assert.LessOrEqual(t, p.x, 5.0)
		assert.GreaterOrEqual(t, p.y, 0.0)
		assert.LessOrEqual(t, p.y, 5.0)
	}
	assert.Empty(t, clip([]point{{-3, -3}, {-2, -3}, {-2, -2}}, point{5, 5}))
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	var c Canvas = rec
	c.Clear()
	c.Line(0, 0, 1, 1, DefaultStyle())
	c.DrawText(3, 4, "hi", DefaultStyle())
	require.NoError(t, c.Update())
	require.NoError(t, c.ExportRaster("out/0001.png"))

	assert.Equal(t, 1, rec.Count("clear"))
	assert.Len(t, rec.Primitives(), 2)
	assert.Equal(t, []string{"out/0001.png"}, rec.Exports())
	assert.Equal(t, "line(0,0,1,1)", rec.Primitives()[0].String())

	var _ Transformer = rec
	rec.Forget()
	assert.Empty(t, rec.Calls())
}
