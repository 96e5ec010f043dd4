package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatestFile(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.yaml", "b.YML", "c.txt"}
	for i, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(p, mod, mod))
	}

	latest, err := FindLatestFile(dir, ".yaml", ".yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.YML"), latest)

	_, err = FindLatestFile(dir, ".pdf")
	assert.Error(t, err)
	_, err = FindLatestFile(filepath.Join(dir, "missing"), ".pdf")
	assert.Error(t, err)
}

func TestPickEncoder(t *testing.T) {
	assert.Equal(t, "h264_nvenc", pickEncoder(" V....D h264_nvenc  NVIDIA NVENC H.264 encoder"))
	assert.Equal(t, "h264_videotoolbox", pickEncoder("h264_nvenc\nh264_videotoolbox"))
	assert.Equal(t, "libx264", pickEncoder(""))

	assert.Equal(t, 75, DefaultQuality("h264_videotoolbox"))
	assert.Equal(t, 23, DefaultQuality("libx264"))
}

func TestImagePool(t *testing.T) {
	p := NewImagePool(1)
	rect := image.Rect(0, 0, 16, 9)
	img := p.Get(rect)
	require.Equal(t, rect, img.Rect)
	p.Put(img)
	p.Put(nil)
	p.Put(image.NewRGBA(image.Rect(0, 0, 16, 9))) // over the limit, dropped

	moved := image.Rect(4, 4, 20, 13)
	again := p.Get(moved)
	assert.Same(t, img, again)
	assert.Equal(t, moved, again.Rect)

	fresh := p.Get(rect)
	assert.NotSame(t, img, fresh)

	allocated, reused := p.Counts()
	assert.Equal(t, int64(2), allocated)
	assert.Equal(t, int64(1), reused)
}

func TestImagePoolDropsSubImages(t *testing.T) {
	p := NewImagePool(4)
	big := image.NewRGBA(image.Rect(0, 0, 8, 8))
	sub := big.SubImage(image.Rect(0, 0, 4, 4)).(*image.RGBA)
	p.Put(sub)

	got := p.Get(image.Rect(0, 0, 4, 4))
	assert.NotSame(t, sub, got)
	_, reused := p.Counts()
	assert.Zero(t, reused)
}

func TestStats(t *testing.T) {
	st, err := Stats()
	require.NoError(t, err)
	assert.Positive(t, st.Goroutines)
	assert.NotZero(t, st.TotalMemory)
	assert.LessOrEqual(t, st.RSS, st.TotalMemory)
}
