package source

import (
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
)

// QRSource is a single-page source rendering text as a QR code.
type QRSource struct {
	code *qrcode.QRCode
	size int
}

// NewQRSource encodes text at medium recovery; size is the square edge in
// pixels.
func NewQRSource(text string, size int) (*QRSource, error) {
	code, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	return &QRSource{code: code, size: size}, nil
}

// Colors replaces the default black on white; a nil colour is left as is.
func (q *QRSource) Colors(fg, bg color.Color) {
	if fg != nil {
		q.code.ForegroundColor = fg
	}
	if bg != nil {
		q.code.BackgroundColor = bg
	}
}

func (q *QRSource) PageCount() int { return 1 }

func (q *QRSource) PageSize(index int) (float64, float64, error) {
	if err := checkPage(q, index); err != nil {
		return 0, 0, err
	}
	return float64(q.size), float64(q.size), nil
}

func (q *QRSource) Render(index int, dpi int) (image.Image, error) {
	if err := checkPage(q, index); err != nil {
		return nil, err
	}
	return q.code.Image(q.size), nil
}

func (q *QRSource) Close() error { return nil }
