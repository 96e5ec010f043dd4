package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// RasterOptions configures a Raster canvas.
type RasterOptions struct {
	Width, Height int
	Background    color.Color
	// YUp puts the origin at the bottom-left with +y upward.
	YUp bool
}

// Raster is an in-memory RGBA canvas.
type Raster struct {
	opts  RasterOptions
	img   *image.RGBA
	m     f64.Aff3
	stack []f64.Aff3
	z     *vector.Rasterizer
	faces map[float64]font.Face
}

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

var (
	goRegularOnce sync.Once
	goRegular     *opentype.Font
	goRegularErr  error
)

func loadGoRegular() (*opentype.Font, error) {
	goRegularOnce.Do(func() {
		goRegular, goRegularErr = opentype.Parse(goregular.TTF)
	})
	return goRegular, goRegularErr
}

// NewRaster allocates a cleared canvas.
func NewRaster(opts RasterOptions) (*Raster, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", opts.Width, opts.Height)
	}
	return NewRasterOn(image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)), opts)
}

// NewRasterOn draws into an existing image, which must match the size in opts.
func NewRasterOn(img *image.RGBA, opts RasterOptions) (*Raster, error) {
	if img.Bounds() != image.Rect(0, 0, opts.Width, opts.Height) {
		return nil, fmt.Errorf("image bounds %v do not match %dx%d", img.Bounds(), opts.Width, opts.Height)
	}
	if opts.Background == nil {
		opts.Background = color.White
	}
	if _, err := loadGoRegular(); err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	r := &Raster{
		opts:  opts,
		img:   img,
		m:     identity,
		z:     vector.NewRasterizer(opts.Width, opts.Height),
		faces: make(map[float64]font.Face),
	}
	r.Clear()
	return r, nil
}

// Image exposes the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Bounds() image.Rectangle { return r.img.Bounds() }

// --- transform stack ---

func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func (r *Raster) Push() { r.stack = append(r.stack, r.m) }

func (r *Raster) Pop() {
	if n := len(r.stack); n > 0 {
		r.m = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
}

func (r *Raster) Translate(dx, dy float64) { r.m = mul(r.m, f64.Aff3{1, 0, dx, 0, 1, dy}) }
func (r *Raster) Scale(sx, sy float64)     { r.m = mul(r.m, f64.Aff3{sx, 0, 0, 0, sy, 0}) }

func (r *Raster) Rotate(radians float64) {
	s, c := math.Sincos(radians)
	r.m = mul(r.m, f64.Aff3{c, -s, 0, s, c, 0})
}

func (r *Raster) Reset() {
	r.m = identity
	r.stack = r.stack[:0]
}

// Center moves the origin to the middle of the canvas.
func (r *Raster) Center() {
	r.Translate(float64(r.opts.Width)/2, float64(r.opts.Height)/2)
}

// device is the full user-to-pixel transform, y flip included.
func (r *Raster) device() f64.Aff3 {
	if !r.opts.YUp {
		return r.m
	}
	return mul(f64.Aff3{1, 0, 0, 0, -1, float64(r.opts.Height)}, r.m)
}

type point struct{ x, y float64 }

func apply(m f64.Aff3, x, y float64) point {
	return point{m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]}
}

func (r *Raster) toDevice(xs, ys []float64) []point {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	m := r.device()
	pts := make([]point, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pts = append(pts, apply(m, xs[i], ys[i]))
	}
	return pts
}

// --- primitives ---

func (r *Raster) fill(polys [][]point, st Style) {
	paint := st.Paint()
	if paint.A == 0 {
		return
	}
	bounds := point{float64(r.opts.Width), float64(r.opts.Height)}
	r.z.Reset(r.opts.Width, r.opts.Height)
	r.z.DrawOp = draw.Over
	drawn := false
	for _, poly := range polys {
		poly = clip(poly, bounds)
		if len(poly) < 3 {
			continue
		}
		r.z.MoveTo(float32(poly[0].x), float32(poly[0].y))
		for _, p := range poly[1:] {
			r.z.LineTo(float32(p.x), float32(p.y))
		}
		r.z.ClosePath()
		drawn = true
	}
	if drawn {
		r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(paint), image.Point{})
	}
}

func (r *Raster) FillPolygon(xs, ys []float64, st Style) {
	r.fill([][]point{r.toDevice(xs, ys)}, st)
}

// Stroke draws a polyline of st.LineWidth pixels with square caps and joins.
func (r *Raster) Stroke(xs, ys []float64, st Style) {
	pts := r.toDevice(xs, ys)
	if len(pts) < 2 {
		return
	}
	h := st.LineWidth / 2
	if h <= 0 {
		h = 0.5
	}
	polys := make([][]point, 0, 2*len(pts))
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b.x-a.x, b.y-a.y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*h, dx/l*h
		polys = append(polys, []point{
			{a.x + nx, a.y + ny},
			{b.x + nx, b.y + ny},
			{b.x - nx, b.y - ny},
			{a.x - nx, a.y - ny},
		})
	}
	// joins share the winding of the segment quads so overlaps do not cancel
	for _, p := range pts {
		polys = append(polys, []point{
			{p.x - h, p.y - h},
			{p.x - h, p.y + h},
			{p.x + h, p.y + h},
			{p.x + h, p.y - h},
		})
	}
	r.fill(polys, st)
}

func (r *Raster) Line(x0, y0, x1, y1 float64, st Style) {
	r.Stroke([]float64{x0, x1}, []float64{y0, y1}, st)
}

func (r *Raster) Rectangle(x0, y0, x1, y1 float64, fill bool, st Style) {
	if fill {
		r.FillPolygon([]float64{x0, x0, x1, x1}, []float64{y0, y1, y1, y0}, st)
		return
	}
	r.Stroke([]float64{x0, x0, x1, x1, x0}, []float64{y0, y1, y1, y0, y0}, st)
}

// BlitImage maps img onto the user-space rectangle (x0,y0)-(x1,y1); the
// image's top-left pixel lands on (x0,y0).
func (r *Raster) BlitImage(x0, y0, x1, y1 float64, img image.Image, st Style) {
	if img == nil || st.Alpha <= 0 {
		return
	}
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	sx := (x1 - x0) / float64(sb.Dx())
	sy := (y1 - y0) / float64(sb.Dy())
	src2user := f64.Aff3{
		sx, 0, x0 - float64(sb.Min.X)*sx,
		0, sy, y0 - float64(sb.Min.Y)*sy,
	}
	s2d := mul(r.device(), src2user)
	if det := s2d[0]*s2d[4] - s2d[1]*s2d[3]; det == 0 || math.IsNaN(det) {
		return
	}
	var opts *draw.Options
	if st.Alpha < 1 {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha16{A: uint16(st.Alpha * 0xffff)})}
	}
	draw.BiLinear.Transform(r.img, s2d, img, sb, draw.Over, opts)
}

func (r *Raster) face(size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultStyle().FontSize
	}
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	fnt, err := loadGoRegular()
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	r.faces[size] = f
	return f, nil
}

// DrawText puts the baseline of s at (x,y).
func (r *Raster) DrawText(x, y float64, s string, st Style) {
	paint := st.Paint()
	if paint.A == 0 || s == "" {
		return
	}
	face, err := r.face(st.FontSize)
	if err != nil {
		return
	}
	p := apply(r.device(), x, y)
	switch st.Align {
	case AlignCenter:
		p.x -= float64(font.MeasureString(face, s)) / 64 / 2
	case AlignRight:
		p.x -= float64(font.MeasureString(face, s)) / 64
	}
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(paint),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(p.x * 64), Y: fixed.Int26_6(p.y * 64)},
	}
	d.DrawString(s)
}

func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.opts.Background), image.Point{}, draw.Src)
}

// Update is a no-op; drawing is immediate.
func (r *Raster) Update() error { return nil }

// ExportRaster writes the canvas as PNG, creating parent directories.
func (r *Raster) ExportRaster(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, r.img); err != nil {
		f.Close()
		return fmt.Errorf("png encode %s: %w", path, err)
	}
	return f.Close()
}
