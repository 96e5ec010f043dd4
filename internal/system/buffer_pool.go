package system

import (
	"image"
	"runtime"
	"sync"
	"sync/atomic"
)

// ImagePool keeps idle frame buffers per frame size so parallel workers
// reuse canvases instead of allocating one per run. At most limit buffers
// of each size are kept; extra ones are left to the collector.
type ImagePool struct {
	limit int
	free  sync.Map // image.Point -> chan *image.RGBA

	allocated atomic.Int64
	reused    atomic.Int64
}

func NewImagePool(limit int) *ImagePool {
	return &ImagePool{limit: max(limit, 1)}
}

var globalPool = NewImagePool(runtime.NumCPU())

// GetImage returns a frame buffer of the given size from the shared pool.
// Its contents are undefined; the canvas clears it before drawing.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage hands a buffer back to the shared pool.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// PoolCounts reports the shared pool's allocations and reuses.
func PoolCounts() (allocated, reused int64) {
	return globalPool.Counts()
}

func (p *ImagePool) bucket(size image.Point) chan *image.RGBA {
	if ch, ok := p.free.Load(size); ok {
		return ch.(chan *image.RGBA)
	}
	ch, _ := p.free.LoadOrStore(size, make(chan *image.RGBA, p.limit))
	return ch.(chan *image.RGBA)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	select {
	case img := <-p.bucket(rect.Size()):
		p.reused.Add(1)
		img.Rect = rect
		return img
	default:
	}
	p.allocated.Add(1)
	return image.NewRGBA(rect)
}

// Put keeps img for reuse. Sub-images sharing a larger buffer are dropped.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Empty() {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride != 4*w || len(img.Pix) != 4*w*h {
		return
	}
	select {
	case p.bucket(img.Rect.Size()) <- img:
	default:
	}
}

func (p *ImagePool) Counts() (allocated, reused int64) {
	return p.allocated.Load(), p.reused.Load()
}
