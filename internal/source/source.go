package source

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
)

var (
	ErrPageRange   = errors.New("page index out of range")
	ErrUnsupported = errors.New("unsupported picture source")
)

// Source is a paged supplier of pictures: a PDF, a folder of images or a
// generated code.
type Source interface {
	PageCount() int
	PageSize(index int) (width, height float64, err error)
	Render(index int, dpi int) (image.Image, error)
	Close() error
}

func checkPage(s Source, index int) error {
	if index < 0 || index >= s.PageCount() {
		return fmt.Errorf("%w: %d of %d", ErrPageRange, index, s.PageCount())
	}
	return nil
}

type FitzPDFSource struct {
	mu   sync.Mutex
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("открытие PDF %s: %w", path, err)
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) PageSize(index int) (float64, float64, error) {
	if err := checkPage(f, index); err != nil {
		return 0, 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// Render rasterizes one page. MuPDF documents are not safe for concurrent
// use, so calls are serialized.
func (f *FitzPDFSource) Render(index int, dpi int) (image.Image, error) {
	if err := checkPage(f, index); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 150
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// Open picks a source by path: a .pdf file, an image file or a directory of
// images.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewFitzPDFSource(path)
	case "", ".png", ".jpg", ".jpeg":
		return NewImageSource(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}
