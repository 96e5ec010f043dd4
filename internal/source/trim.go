package source

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// DefaultEdgeThreshold is the Sobel gradient magnitude above which a pixel
// counts as content.
const DefaultEdgeThreshold = 30.0

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// ContentBounds is the smallest rectangle holding every pixel whose Sobel
// gradient exceeds threshold. A blank page gives the empty rectangle.
func ContentBounds(img image.Image, threshold float64) image.Rectangle {
	gray := toGray(img)
	b := gray.Bounds()
	at := func(x, y int) float64 { return float64(gray.GrayAt(x, y).Y) }

	var box image.Rectangle
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) - at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) - at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			if math.Hypot(gx, gy) > threshold {
				box = box.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return box
}

// Trim crops a page to its content plus margin pixels on every side. Blank
// pages are returned unchanged.
func Trim(img image.Image, margin int) image.Image {
	box := ContentBounds(img, DefaultEdgeThreshold)
	if box.Empty() {
		return img
	}
	box = box.Inset(-margin).Intersect(img.Bounds())
	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(box)
	}
	out := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(out, out.Bounds(), img, box.Min, draw.Src)
	return out
}
