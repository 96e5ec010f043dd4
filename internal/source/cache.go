package source

import (
	"fmt"
	"image"
	"image/color"
	"sync"
)

// Cache memoizes rendered pictures so a scene that shows the same page in
// several actors decodes it once.
type Cache struct {
	mu     sync.Mutex
	images map[string]image.Image
}

func NewCache() *Cache {
	return &Cache{images: make(map[string]image.Image)}
}

// get loads outside the lock; when two callers race the first stored
// image wins.
func (c *Cache) get(key string, load func() (image.Image, error)) (image.Image, error) {
	c.mu.Lock()
	img, ok := c.images[key]
	c.mu.Unlock()
	if ok {
		return img, nil
	}

	img, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.images[key]; ok {
		return prev, nil
	}
	c.images[key] = img
	return img, nil
}

// Page opens path, renders one page and closes the source.
func (c *Cache) Page(path string, index, dpi int) (image.Image, error) {
	key := fmt.Sprintf("page:%s#%d@%d", path, index, dpi)
	return c.get(key, func() (image.Image, error) {
		src, err := Open(path)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.Render(index, dpi)
	})
}

// TrimmedPage is Page cropped to the page content; see Trim.
func (c *Cache) TrimmedPage(path string, index, dpi, margin int) (image.Image, error) {
	key := fmt.Sprintf("trim:%s#%d@%d+%d", path, index, dpi, margin)
	return c.get(key, func() (image.Image, error) {
		img, err := c.Page(path, index, dpi)
		if err != nil {
			return nil, err
		}
		return Trim(img, margin), nil
	})
}

// QRCode renders text as a QR picture. Nil colours keep black on white.
func (c *Cache) QRCode(text string, size int, fg, bg color.Color) (image.Image, error) {
	key := fmt.Sprintf("qr:%d:%v:%v:%s", size, fg, bg, text)
	return c.get(key, func() (image.Image, error) {
		src, err := NewQRSource(text, size)
		if err != nil {
			return nil, err
		}
		if fg != nil || bg != nil {
			src.Colors(fg, bg)
		}
		return src.Render(0, 0)
	})
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}
